package voice

import (
	"sort"
	"strings"
)

// Field is a canonical field name a spoken keyword resolves to. The values are
// the table column labels the desktop shell displays.
type Field string

const (
	FieldDate        Field = "Data"
	FieldMerchandise Field = "Mercadorias"
	FieldProduct     Field = "Produto"
	FieldCategory    Field = "Categoria"
	FieldDescription Field = "Descrição"
	FieldCode        Field = "Código"
	FieldPrice       Field = "Preço"
	FieldUnitValue   Field = "Valor Unit."
	FieldTotal       Field = "Total"
	FieldStock       Field = "Estoque"
	FieldQuantity    Field = "Quantidade"
	FieldBox         Field = "Caixa"
	FieldUnit        Field = "Unidade"
)

// keywords maps spoken trigger words to canonical fields. Several keywords may
// resolve to the same field; accent-less variants cover recognizer output that
// drops diacritics.
var keywords = map[string]Field{
	"data":           FieldDate,
	"mercadoria":     FieldMerchandise,
	"mercadorias":    FieldMerchandise,
	"produto":        FieldProduct,
	"produtos":       FieldProduct,
	"categoria":      FieldCategory,
	"descrição":      FieldDescription,
	"descricao":      FieldDescription,
	"código":         FieldCode,
	"codigo":         FieldCode,
	"preço":          FieldPrice,
	"preco":          FieldPrice,
	"valor":          FieldPrice,
	"valor unitário": FieldUnitValue,
	"valor unitario": FieldUnitValue,
	"unitário":       FieldUnitValue,
	"unitario":       FieldUnitValue,
	"total":          FieldTotal,
	"estoque":        FieldStock,
	"quantidade":     FieldQuantity,
	"quantas":        FieldQuantity,
	"caixa":          FieldBox,
	"caixas":         FieldBox,
	"unidade":        FieldUnit,
	"unidades":       FieldUnit,
}

// sortedKeywords holds the trigger words by descending length so that a longer
// keyword wins when a shorter one is its substring ("valor unitário" before
// "valor").
var sortedKeywords = func() []string {
	keys := make([]string, 0, len(keywords))
	for k := range keywords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return keys
}()

// connectors are stripped once each, in order, from the front of a captured value.
var connectors = []string{"de ", "da ", "do ", "é ", ": "}

type hit struct {
	index   int
	keyword string
	field   Field
}

// Parse segments a free-text transcript into a canonical-field mapping. It
// never fails; a transcript with no recognized keyword yields an empty map.
//
// Only the first occurrence of each keyword is considered. Hits are ordered by
// start index and each captured value is the span between the end of its
// keyword and the start of the next hit. Adjacent keywords therefore capture
// an empty value for the first one; that ordering heuristic is part of the
// observable behavior and must not change without product sign-off.
func Parse(transcript string) map[Field]string {
	text := strings.ToLower(transcript)
	data := make(map[Field]string)

	var hits []hit
	for _, k := range sortedKeywords {
		if idx := strings.Index(text, k); idx != -1 {
			hits = append(hits, hit{index: idx, keyword: k, field: keywords[k]})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].index != hits[j].index {
			return hits[i].index < hits[j].index
		}
		return hits[i].keyword < hits[j].keyword
	})

	for i, h := range hits {
		start := h.index + len(h.keyword)
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].index
		}
		if end < start {
			// Overlapping keywords at the same position. The later hit
			// overwrites the field anyway.
			end = start
		}

		value := strings.TrimSpace(text[start:end])
		for _, prefix := range connectors {
			value = strings.TrimPrefix(value, prefix)
		}

		data[h.field] = strings.TrimSpace(value)
	}

	return data
}
