package domain

// Stored field names written by this service. Readers must still accept the
// alternates listed in normalize.FieldCandidates.
const (
	FieldID              = "id"
	FieldUserID          = "user_id"
	FieldAmount          = "amount"
	FieldDescription     = "description"
	FieldMerchant        = "merchant"
	FieldCategory        = "category"
	FieldAICategory      = "ai_category"
	FieldAIInsights      = "ai_insights"
	FieldTransactionType = "transaction_type"
	FieldDate            = "date"
	FieldProcessedAt     = "processed_at"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"

	FieldGoalName      = "goal_name"
	FieldTitle         = "title"
	FieldGoalType      = "goal_type"
	FieldTargetAmount  = "target_amount"
	FieldCurrentAmount = "current_amount"
	FieldTargetDate    = "target_date"
	FieldIsActive      = "is_active"

	FieldEmail = "email"
	FieldName  = "name"
)

// Table names used by the SQL and warehouse backends.
const (
	TableTransactions = "transactions"
	TableGoals        = "financial_goals"
	TableUsers        = "users"
)
