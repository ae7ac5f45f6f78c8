package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSector(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fintech", "FinTech"},
		{"FINTECH", "FinTech"},
		{"  machine learning  ", "AI/ML"},
		{"saas", "B2B SaaS"},
		{"crypto", "Blockchain/Web3"},
		{"", "Technology"},
		{"space tech", "Space Tech"}, // unmapped, title-cased
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSector(tt.input))
		})
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"seed", "Seed"},
		{"Series A", "Series A"},
		{"series d", "Series C+"},
		{"growth", "Growth/Late Stage"},
		{"acquired", "Growth/Late Stage"},
		{"early stage", "Seed"},
		{"", "Seed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStage(tt.input))
		})
	}
}

func TestFilterCompanies(t *testing.T) {
	companies := []Company{
		{Name: "A", Sector: "FinTech", Stage: "Seed"},
		{Name: "B", Sector: "AI/ML", Stage: "Series A"},
		{Name: "C", Sector: "FinTech", Stage: "Series B"},
	}

	t.Run("sector filter", func(t *testing.T) {
		got := filterCompanies(companies, FetchOptions{Sectors: []string{"FinTech"}, Limit: 10}, "Test")
		assert.Len(t, got, 2)
		assert.Equal(t, "A", got[0].Name)
		assert.Equal(t, "Test", got[0].Source)
	})

	t.Run("sector agnostic disables sector filter", func(t *testing.T) {
		got := filterCompanies(companies, FetchOptions{Sectors: []string{"Sector Agnostic"}, Limit: 10}, "Test")
		assert.Len(t, got, 3)
	})

	t.Run("stage filter", func(t *testing.T) {
		got := filterCompanies(companies, FetchOptions{Stages: []string{"Series A"}, Limit: 10}, "Test")
		assert.Len(t, got, 1)
		assert.Equal(t, "B", got[0].Name)
	})

	t.Run("no matches falls back to unfiltered head", func(t *testing.T) {
		got := filterCompanies(companies, FetchOptions{Sectors: []string{"Gaming"}, Limit: 2}, "Test")
		assert.Len(t, got, 2)
		assert.Equal(t, "A", got[0].Name)
	})

	t.Run("limit truncates", func(t *testing.T) {
		got := filterCompanies(companies, FetchOptions{Limit: 1}, "Test")
		assert.Len(t, got, 1)
	})
}
