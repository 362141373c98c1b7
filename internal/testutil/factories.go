package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/guarzo/cardprice/internal/model"
)

// TestDataFactory provides methods for generating dynamic test data
type TestDataFactory struct {
	rand *rand.Rand
}

// NewTestDataFactory creates a new test data factory with a seeded random generator
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateTestToken generates a random access token
func (f *TestDataFactory) GenerateTestToken() string {
	return fmt.Sprintf("test-token-%d", f.rand.Int63())
}

// GenerateTestCardNumber generates a random card number for testing
func (f *TestDataFactory) GenerateTestCardNumber() string {
	return fmt.Sprintf("%d", f.rand.Intn(300)+1)
}

// GenerateTestSeries generates a random series label with a season year
func (f *TestDataFactory) GenerateTestSeries() string {
	series := []string{
		"2021-22 Upper Deck Series 2 Hockey",
		"2019 Topps Chrome Baseball",
		"2016 Pokemon XY Evolutions",
		"2020-21 Panini Prizm Basketball",
		"1999 Pokemon Base Set",
	}
	return series[f.rand.Intn(len(series))]
}

// GenerateTestCardName generates a random player or character name
func (f *TestDataFactory) GenerateTestCardName() string {
	names := []string{"Cole Caufield", "Mike Trout", "Charizard", "LaMelo Ball", "Pikachu"}
	return names[f.rand.Intn(len(names))]
}

// GenerateTestCardType generates a random variant, "Base" included
func (f *TestDataFactory) GenerateTestCardType() string {
	types := []string{"Base", "Young Guns", "Refractor", "Holo", "Silver Prizm"}
	return types[f.rand.Intn(len(types))]
}

// GenerateTestCardFields generates a complete set of confirmed card fields
func (f *TestDataFactory) GenerateTestCardFields() model.CardFields {
	return model.CardFields{
		Name:   f.GenerateTestCardName(),
		Series: f.GenerateTestSeries(),
		Number: f.GenerateTestCardNumber(),
		Type:   f.GenerateTestCardType(),
	}
}

// GenerateTestPrice generates a random sale price in dollars, two decimals
func (f *TestDataFactory) GenerateTestPrice() float64 {
	return float64(f.rand.Intn(50000)+500) / 100 // Between $5 and $505
}

// GenerateTestSales generates n sale prices clustered around center,
// each within +/- spread.
func (f *TestDataFactory) GenerateTestSales(n int, center, spread float64) []float64 {
	sales := make([]float64, n)
	for i := range sales {
		sales[i] = center + (f.rand.Float64()*2-1)*spread
	}
	return sales
}
