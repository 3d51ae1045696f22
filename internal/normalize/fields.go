package normalize

import (
	"github.com/dvloznov/finance-coach/internal/domain"
)

// Field is a canonical field resolved from one of several stored names.
type Field string

const (
	FieldID          Field = "id"
	FieldUserID      Field = "user_id"
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
	FieldMerchant    Field = "merchant"
	FieldTimestamp   Field = "timestamp"
	FieldCategory    Field = "category"
	FieldType        Field = "transaction_type"
	FieldInsights    Field = "ai_insights"

	FieldGoalTitle   Field = "goal_title"
	FieldGoalType    Field = "goal_type"
	FieldGoalTarget  Field = "goal_target"
	FieldGoalCurrent Field = "goal_current"
	FieldGoalDue     Field = "goal_due"
	FieldGoalActive  Field = "goal_active"
	FieldCreatedAt   Field = "created_at"
	FieldUpdatedAt   Field = "updated_at"
)

// FieldCandidates lists, per canonical field, the stored names to try in order.
// The first present, non-nil value wins.
var FieldCandidates = map[Field][]string{
	FieldID:          {domain.FieldID, "_id", "transaction_id"},
	FieldUserID:      {domain.FieldUserID},
	FieldAmount:      {domain.FieldAmount},
	FieldDescription: {domain.FieldDescription},
	FieldMerchant:    {domain.FieldMerchant},
	FieldTimestamp:   {domain.FieldDate, domain.FieldProcessedAt, domain.FieldCreatedAt},
	FieldCategory:    {domain.FieldAICategory, domain.FieldCategory},
	FieldType:        {domain.FieldTransactionType, "type"},
	FieldInsights:    {domain.FieldAIInsights},

	FieldGoalTitle:   {domain.FieldGoalName, domain.FieldTitle},
	FieldGoalType:    {domain.FieldGoalType},
	FieldGoalTarget:  {domain.FieldTargetAmount, "target"},
	FieldGoalCurrent: {domain.FieldCurrentAmount, "current"},
	FieldGoalDue:     {domain.FieldTargetDate},
	FieldGoalActive:  {domain.FieldIsActive, "active"},
	FieldCreatedAt:   {domain.FieldCreatedAt},
	FieldUpdatedAt:   {domain.FieldUpdatedAt},
}

// lookup returns the first non-nil value among the candidates for f.
func lookup(rec domain.Record, f Field) (any, bool) {
	for _, key := range FieldCandidates[f] {
		if v, ok := rec[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}
