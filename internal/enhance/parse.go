package enhance

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
)

// Output limits.
const (
	MaxTitleRunes     = 60
	MaxMetaRunes      = 160
	MaxKeywords       = 15
	DefaultSchemaType = "LocalBusiness"
)

// SchemaTypes are the schema.org types the model may choose from.
var SchemaTypes = []string{
	"Restaurant", "Winery", "Brewery", "Bar", "Cafe", "Hotel", "Spa", "Store",
	"TouristAttraction", DefaultSchemaType,
}

// ErrUnparsable is returned when a model reply holds no usable copy.
var ErrUnparsable = eris.New("enhance: unparsable model response")

type rawCopy struct {
	Description    string      `json:"description"`
	SEOTitle       string      `json:"seo_title"`
	SEODescription string      `json:"seo_description"`
	Keywords       keywordList `json:"keywords"`
	SchemaType     string      `json:"schema_type"`
}

// keywordList accepts an array of strings or one comma-separated string.
type keywordList []string

func (k *keywordList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = strings.Split(s, ",")
	return nil
}

// ParseResponse extracts SEO copy from a model reply. Code fences and prose
// around the JSON object are ignored, and malformed JSON gets one repair
// attempt.
func ParseResponse(text string) (*model.SEOCopy, error) {
	cleaned := cleanJSON(text)
	if !strings.Contains(cleaned, "{") {
		return nil, ErrUnparsable
	}

	var raw rawCopy
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(cleaned)
		if rerr != nil {
			return nil, eris.Wrap(ErrUnparsable, rerr.Error())
		}
		raw = rawCopy{}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, eris.Wrap(ErrUnparsable, err.Error())
		}
	}

	seo := &model.SEOCopy{
		Description:     strings.TrimSpace(raw.Description),
		Title:           truncateWords(raw.SEOTitle, MaxTitleRunes),
		MetaDescription: truncateWords(raw.SEODescription, MaxMetaRunes),
		Keywords:        model.CleanList(raw.Keywords),
	}
	if len(seo.Keywords) > MaxKeywords {
		seo.Keywords = seo.Keywords[:MaxKeywords]
	}
	if seo.Description == "" && seo.Title == "" && seo.MetaDescription == "" && len(seo.Keywords) == 0 {
		return nil, ErrUnparsable
	}
	seo.SchemaType = NormalizeSchemaType(raw.SchemaType)
	return seo, nil
}

// NormalizeSchemaType maps s onto SchemaTypes case-insensitively. Anything
// else becomes LocalBusiness.
func NormalizeSchemaType(s string) string {
	s = strings.TrimSpace(s)
	for _, t := range SchemaTypes {
		if strings.EqualFold(s, t) {
			return t
		}
	}
	return DefaultSchemaType
}

func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	switch {
	case start >= 0 && end > start:
		text = text[start : end+1]
	case start >= 0:
		// Truncated reply; leave the tail for jsonrepair.
		text = text[start:]
	}
	return strings.TrimSpace(text)
}

// truncateWords shortens s to at most limit runes, cutting at the last word
// boundary when there is one.
func truncateWords(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := string([]rune(s)[:limit])
	if next := []rune(s)[limit]; next != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,;:-|–")
}
