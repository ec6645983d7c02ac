package enhance

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_Clean(t *testing.T) {
	seo, err := ParseResponse(`{
		"description": "Acme Winery pours estate Zinfandel in Paso Robles.",
		"seo_title": "Acme Winery - Tasting Room | Paso Robles",
		"seo_description": "Taste estate Zinfandel at Acme Winery.",
		"keywords": ["paso robles winery", "Zinfandel", "zinfandel", " tasting room "],
		"schema_type": "winery"
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Acme Winery pours estate Zinfandel in Paso Robles.", seo.Description)
	assert.Equal(t, "Acme Winery - Tasting Room | Paso Robles", seo.Title)
	assert.Equal(t, "Taste estate Zinfandel at Acme Winery.", seo.MetaDescription)
	assert.Equal(t, []string{"paso robles winery", "Zinfandel", "tasting room"}, seo.Keywords)
	assert.Equal(t, "Winery", seo.SchemaType)
}

func TestParseResponse_CodeFenceAndProse(t *testing.T) {
	text := "Here is the copy you asked for:\n```json\n{\"description\":\"Cozy cafe.\",\"seo_title\":\"Blue Door Cafe\",\"keywords\":\"coffee, brunch\",\"schema_type\":\"Cafe\"}\n```\nLet me know!"

	seo, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, "Cozy cafe.", seo.Description)
	assert.Equal(t, []string{"coffee", "brunch"}, seo.Keywords)
	assert.Equal(t, "Cafe", seo.SchemaType)
}

func TestParseResponse_Repair(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"trailing comma", `{"description": "Fine dining.", "seo_title": "Chez Acme",}`, "Chez Acme"},
		{"single quotes", `{'description': 'Fine dining.', 'seo_title': 'Chez Acme'}`, "Chez Acme"},
		{"truncated", `{"description": "Fine dining.", "seo_title": "Chez Acme", "keywords": ["bistro"`, "Chez Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seo, err := ParseResponse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seo.Title)
			assert.Equal(t, "Fine dining.", seo.Description)
		})
	}
}

func TestParseResponse_Unparsable(t *testing.T) {
	for _, text := range []string{
		"",
		"I'm sorry, I can't help with that.",
		`{}`,
		`{"description": "", "keywords": []}`,
	} {
		_, err := ParseResponse(text)
		assert.ErrorIs(t, err, ErrUnparsable, "text %q", text)
	}
}

func TestParseResponse_Limits(t *testing.T) {
	long := strings.Repeat("winery ", 40)
	kws := make([]string, 0, 20)
	for i := range 20 {
		kws = append(kws, `"kw`+string(rune('a'+i))+`"`)
	}
	text := `{"description":"x","seo_title":"` + long + `","seo_description":"` + long +
		`","keywords":[` + strings.Join(kws, ",") + `],"schema_type":"Spaceport"}`

	seo, err := ParseResponse(text)
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(seo.Title), MaxTitleRunes)
	assert.LessOrEqual(t, utf8.RuneCountInString(seo.MetaDescription), MaxMetaRunes)
	assert.False(t, strings.HasSuffix(seo.Title, " "))
	assert.True(t, strings.HasSuffix(seo.Title, "winery"))
	assert.Len(t, seo.Keywords, MaxKeywords)
	assert.Equal(t, DefaultSchemaType, seo.SchemaType)
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "short", truncateWords("  short ", 10))
	assert.Equal(t, "one two", truncateWords("one two three", 9))
	assert.Equal(t, "one two", truncateWords("one two three", 8))
	assert.Equal(t, "abcdefgh", truncateWords("abcdefghijkl", 8))
	assert.Equal(t, "Acme", truncateWords("Acme | Paso Robles", 6))
	assert.Equal(t, "Café Olé", truncateWords("Café Olé Olé", 9))
}

func TestNormalizeSchemaType(t *testing.T) {
	assert.Equal(t, "TouristAttraction", NormalizeSchemaType("touristattraction"))
	assert.Equal(t, "Restaurant", NormalizeSchemaType(" Restaurant "))
	assert.Equal(t, "LocalBusiness", NormalizeSchemaType(""))
	assert.Equal(t, "LocalBusiness", NormalizeSchemaType("FoodEstablishment"))
}
