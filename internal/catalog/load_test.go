package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSONArray(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "formations.json")
	body := `[
  {"nom": "Licence Informatique", "etablissement": "Universite Paris Cite", "ville": "Paris",
   "type_etablissement": "Public", "niveau_diplome": "Licence", "domaine": "Informatique",
   "debouches_metiers": [" Developpeur ", ""], "selectivite": "Selectif"},
  {"nom": "Master Data Science", "etablissement": "EDHEC", "ville": "Lille",
   "type_etablissement": "Privé", "niveau_diplome": "Master", "selectivite": "Très sélectif"}
]`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	entries, err := Load(p)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, CategoryLicence, entries[0].Category)
	assert.Equal(t, OperatorPublic, entries[0].Operator)
	assert.Equal(t, []string{"Developpeur"}, entries[0].Outcomes)
	assert.True(t, entries[0].IsSelective())

	assert.Equal(t, CategoryMaster, entries[1].Category)
	assert.Equal(t, OperatorPrivate, entries[1].Operator)
	assert.Equal(t, SelectivityHighlySelective, entries[1].Selectivity)
}

func TestParse_JSONLines(t *testing.T) {
	body := "{\"nom\":\"BUT Informatique\",\"etablissement\":\"IUT Lyon 1\",\"ville\":\"Lyon\",\"niveau_diplome\":\"BUT\"}\n\n" +
		"{\"nom\":\"BTS SIO\",\"etablissement\":\"Lycee Ampere\",\"ville\":\"Lyon\",\"niveau_diplome\":\"BTS\"}\n"
	entries, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, CategoryBUT, entries[0].Category)
	assert.Equal(t, CategoryBTS, entries[1].Category)
	assert.Equal(t, OperatorUnknown, entries[1].Operator)
}

func TestParse_RejectsMissingCity(t *testing.T) {
	_, err := Parse([]byte(`[{"nom":"Licence Droit","etablissement":"Universite de Nantes","niveau_diplome":"Licence"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")
}

func TestParse_Empty(t *testing.T) {
	entries, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarshalLine_RoundTripKeepsTypedFields(t *testing.T) {
	in := Entry{
		Name: "Licence pro Metiers du numerique", Institution: "IUT Aix", City: "Aix-en-Provence",
		Category: CategoryLicencePro, Operator: OperatorPrivate, Selectivity: SelectivityHighlySelective,
	}
	b, err := MarshalLine(in)
	require.NoError(t, err)
	out, err := UnmarshalLine(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"Licence":                 CategoryLicence,
		"Licence professionnelle": CategoryLicencePro,
		"licence pro":             CategoryLicencePro,
		"DUT":                     CategoryBUT,
		"BTS":                     CategoryBTS,
		"Master":                  CategoryMaster,
		"Diplome d'ingenieur":     Category("Diplome d'ingenieur"),
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseCategory(in), "ParseCategory(%q)", in)
	}
}

func TestKey_CaseAndAccentInsensitive(t *testing.T) {
	a := Entry{Name: "Licence Économie", Institution: "Université Lyon 2", City: "Lyon"}
	b := Entry{Name: "licence economie", Institution: "UNIVERSITE LYON 2", City: " lyon "}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.ID(), b.ID())
}

func TestCanonicalText_Stable(t *testing.T) {
	e := Entry{Name: "Master IA", Institution: "Sorbonne", City: "Paris", Category: CategoryMaster, Outcomes: []string{"Data Scientist"}}
	text := CanonicalText(e)
	assert.Contains(t, text, "formation: Master IA")
	assert.Contains(t, text, "debouches: Data Scientist")
	assert.Equal(t, TextHash(text), TextHash(CanonicalText(e)))
}
