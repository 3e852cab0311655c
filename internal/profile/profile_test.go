package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBudget(t *testing.T) {
	assert.Equal(t, BudgetPublicOnly, ParseBudget("Public uniquement"))
	assert.Equal(t, BudgetPublicOnly, ParseBudget("public-only"))
	assert.Equal(t, BudgetPublicOrPrivate, ParseBudget("Public ou privé"))
	assert.Equal(t, BudgetPublicOrPrivate, ParseBudget("public_or_private"))
	assert.Equal(t, BudgetIndifferent, ParseBudget("Peu importe"))
	assert.Equal(t, BudgetIndifferent, ParseBudget("beaucoup"))
	assert.Equal(t, BudgetIndifferent, ParseBudget(""))
}

func TestParseYAML(t *testing.T) {
	doc := `
level: L3 Informatique
objective: Devenir Data Scientist
preferred_domains: [Informatique et Technologies]
interests: [IA, Environnement]
grades:
  Maths: 15
  Info: "14,5"
  Physique: abs
  Anglais: 0
geo_constraint: Lyon ou Paris
budget: Public uniquement
skills: [Python, SQL]
`
	p, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "L3 Informatique", p.Level)
	assert.Equal(t, BudgetPublicOnly, p.Budget)
	assert.True(t, p.PublicOnly())
	assert.Equal(t, Grades{"Maths": 15, "Info": 14.5, "Anglais": 0}, p.Grades)

	avg, ok := p.GradeAverage()
	require.True(t, ok)
	assert.InDelta(t, 14.75, avg, 1e-9)
}

func TestParseJSON(t *testing.T) {
	p, err := Parse([]byte(`{"level":"Terminale","objective":"Avocat","grades":{"Histoire":12}}`))
	require.NoError(t, err)
	assert.Equal(t, "Terminale", p.Level)
	assert.Equal(t, BudgetIndifferent, p.Budget)
	avg, ok := p.GradeAverage()
	assert.True(t, ok)
	assert.Equal(t, 12.0, avg)
}

func TestGradeAverageIgnoresOutOfRange(t *testing.T) {
	p := StudentProfile{Grades: Grades{"a": 0, "b": 25, "c": -3}}
	_, ok := p.GradeAverage()
	assert.False(t, ok)

	var empty StudentProfile
	_, ok = empty.GradeAverage()
	assert.False(t, ok)
}

func TestGradeAverageIsOrderIndependent(t *testing.T) {
	marks := []float64{13.1, 14.7, 12.35, 13.9, 14.3, 11.05, 16.65}
	a := Grades{}
	b := Grades{}
	for i, m := range marks {
		a[string(rune('a'+i))] = m
		b[string(rune('z'-i))] = m
	}
	want, ok := StudentProfile{Grades: a}.GradeAverage()
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		got, _ := StudentProfile{Grades: a}.GradeAverage()
		assert.Equal(t, want, got)
		got, _ = StudentProfile{Grades: b}.GradeAverage()
		assert.Equal(t, want, got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level: M1\nbudget: [x]\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "M1", p.Level)
	assert.Equal(t, BudgetIndifferent, p.Budget, "malformed budget falls back")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("level: [unterminated"))
	assert.Error(t, err)
}
