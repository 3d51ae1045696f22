package synthetic

import (
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// Merchants are the synthetic merchants and the category each maps to.
var Merchants = []struct {
	Name     string
	Category string
}{
	{"Whole Foods", "food"},
	{"Starbucks", "food"},
	{"Shell Gas Station", "transportation"},
	{"Amazon", "shopping"},
	{"Netflix", "entertainment"},
	{"Uber", "transportation"},
	{"Target", "shopping"},
	{"McDonald's", "food"},
	{"Best Buy", "shopping"},
	{"CVS Pharmacy", "healthcare"},
	{"AT&T", "utilities"},
	{"Electric Company", "utilities"},
	{"Water Department", "utilities"},
	{"Rent Payment", "housing"},
	{"Chipotle", "food"},
	{"Home Depot", "home"},
	{"Walmart", "shopping"},
	{"Costco", "shopping"},
	{"Apple Store", "shopping"},
}

const (
	rentMerchant = "Rent Payment"
	historyDays  = 30
)

// Generator produces plausible transaction histories. It is safe for
// concurrent use; a fixed seed yields a fixed sequence.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// New creates a generator. Seed 0 picks a random seed.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Transactions returns n payments for userID dated within the 30 days before now.
func (g *Generator) Transactions(userID string, n int, now time.Time) []domain.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := now.AddDate(0, 0, -historyDays)
	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		m := Merchants[g.faker.Number(0, len(Merchants)-1)]

		amount := g.faker.Price(5.99, 299.99)
		if m.Name == rentMerchant {
			amount = g.faker.Price(800, 2000)
		}

		merchant, category := m.Name, m.Category
		ts := start.AddDate(0, 0, g.faker.Number(0, historyDays))
		if ts.After(now) {
			ts = now
		}

		out = append(out, domain.Transaction{
			ID:          g.faker.UUID(),
			UserID:      userID,
			Amount:      amount,
			Description: fmt.Sprintf("Purchase at %s", merchant),
			Merchant:    &merchant,
			Timestamp:   ts,
			Category:    &category,
			AICategory:  &category,
			Type:        domain.TypePayment,
			Effective:   category,
		})
	}
	return out
}

// Profile returns a fake email address and display name.
func (g *Generator) Profile() (email, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Email(), g.faker.Name()
}
