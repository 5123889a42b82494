package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jask/extracta/internal/database/repository"
)

var descriptions = []string{
	"CARD PAYMENT RIMI LIETUVA",
	"POS-NETFLIX.COM",
	"Card: COFFEE-ISLAND-CAFE",
	"TRANSFER TO SAVINGS 000123",
	"SALARY ACME LTD",
	"payment to visa",
	"UBER *TRIP",
}

// StatementLines returns n statement lines shaped like extracted PDF text.
// The same seed always yields the same lines.
func StatementLines(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lines := make([]string, 0, n+1)
	lines = append(lines, "Account statement (generated)")
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, rng.Intn(90))
		desc := descriptions[rng.Intn(len(descriptions))]
		cents := rng.Intn(20000) + 1
		sign := "-"
		if desc == "SALARY ACME LTD" {
			sign = ""
		}
		if i%3 == 0 {
			lines = append(lines, fmt.Sprintf("%s %s %s%d.%02d", date.Format("02/01/2006"), desc, sign, cents/100, cents%100))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s%d.%02d", date.Format("2006-01-02"), desc, sign, cents/100, cents%100))
	}
	return lines
}

// SeedCategories creates a small category tree for demos.
func SeedCategories(ctx context.Context, repo *repository.CategoryRepo) error {
	for _, name := range []string{"Groceries", "Subscriptions", "Coffee & Drinks", "Transport", "Salary", "Savings"} {
		if err := repo.EnsureNamed(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
