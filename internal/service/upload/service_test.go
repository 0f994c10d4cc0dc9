package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCategories(t *testing.T) {
	t.Run("named tiers with budgets", func(t *testing.T) {
		text := "Our policy defines three tiers.\n" +
			"Budget employees receive € 450 per month.\n" +
			"Mid-range staff get €650 monthly.\n" +
			"Premium management: € 1.250,50\n"

		out := extractCategories(text, "policy.pdf")
		require.Len(t, out, 3)

		assert.Equal(t, "Budget", out[0].CategoryName)
		require.NotNil(t, out[0].MonthlyBudget)
		assert.Equal(t, 450.0, *out[0].MonthlyBudget)

		assert.Equal(t, "Mid-range", out[1].CategoryName)
		assert.Equal(t, 650.0, *out[1].MonthlyBudget)

		assert.Equal(t, "Premium", out[2].CategoryName)
		assert.Equal(t, 1250.5, *out[2].MonthlyBudget)

		for _, c := range out {
			assert.Equal(t, 0.6, c.Confidence)
			assert.Equal(t, "policy.pdf", c.Source)
		}
	})

	t.Run("cost lines apply to every category", func(t *testing.T) {
		text := "Budget tier € 500\n" +
			"Premium tier € 900\n" +
			"Parking allowance of € 45 per month.\n" +
			"Every employee receives a fuel card worth € 150.\n"

		out := extractCategories(text, "policy.docx")
		require.Len(t, out, 2)
		for _, c := range out {
			require.NotNil(t, c.ParkingCost)
			assert.Equal(t, 45.0, *c.ParkingCost)
			require.NotNil(t, c.FuelCard)
			assert.Equal(t, 150.0, *c.FuelCard)
			assert.Nil(t, c.CleaningCost)
		}
	})

	t.Run("dutch keywords recognised", func(t *testing.T) {
		text := "Categorie A krijgt € 600 per maand.\n" +
			"Inclusief tankkaart van € 120 en schoonmaak voor € 30.\n"

		out := extractCategories(text, "beleid.pdf")
		require.Len(t, out, 1)
		require.NotNil(t, out[0].FuelCard)
		assert.Equal(t, 120.0, *out[0].FuelCard)
		require.NotNil(t, out[0].CleaningCost)
		assert.Equal(t, 30.0, *out[0].CleaningCost)
	})

	t.Run("unreadable content yields no suggestions", func(t *testing.T) {
		out := extractCategories("\x00\x01\x02 binary soup", "scan.pdf")
		assert.Empty(t, out)
	})
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"450", 450, true},
		{"650,75", 650.75, true},
		{"1.250,50", 1250.5, true},
		{"0", 0, false},
		{"abc", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseAmount(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
