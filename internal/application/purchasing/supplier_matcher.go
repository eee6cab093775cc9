package purchasing

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Sufijos societarios y conectores que no aportan al nombre.
var stopwords = map[string]bool{
	"sa": true, "sas": true, "ltda": true, "cia": true, "inc": true, "llc": true,
	"de": true, "del": true, "la": true, "las": true, "el": true, "los": true, "y": true,
}

// SupplierMatcher resuelve el proveedor de una compra a partir del texto libre "source".
// Es best-effort: ante cualquier error registra una advertencia y devuelve "".
type SupplierMatcher struct {
	repo repository.SupplierRepository
	log  *logger.Logger
}

// NewSupplierMatcher construye el resolvedor.
func NewSupplierMatcher(repo repository.SupplierRepository, log *logger.Logger) *SupplierMatcher {
	return &SupplierMatcher{repo: repo, log: log}
}

// Match devuelve el id del proveedor que mejor coincide con source, o "" si ninguno alcanza
// el umbral. Compara sin tildes ni mayúsculas y por tokens.
func (m *SupplierMatcher) Match(ctx context.Context, source string) string {
	if m == nil || m.repo == nil {
		return ""
	}
	wanted := m.tokens(source)
	if len(wanted) == 0 {
		return ""
	}

	seen := make(map[string]*entity.Supplier)
	for _, raw := range strings.Fields(source) {
		if len([]rune(raw)) < 3 {
			continue
		}
		candidates, err := m.repo.SearchByName(ctx, raw, 20)
		if err != nil {
			m.log.Warn().Err(err).Str("source", source).Msg("no se pudo buscar el proveedor")
			return ""
		}
		for _, c := range candidates {
			seen[c.ID] = c
		}
	}

	var (
		bestID    string
		bestScore float64
	)
	for _, c := range seen {
		score := similarity(wanted, m.tokens(c.Name))
		if score > bestScore || (score == bestScore && bestID != "" && c.ID < bestID) {
			bestID, bestScore = c.ID, score
		}
	}
	if bestScore < 0.5 {
		return ""
	}
	return bestID
}

// NormalizeName pasa s a minúsculas sin tildes (NFD, quita marcas, NFC). Los transformadores
// de x/text guardan estado, por eso se crean en cada llamada.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

func (m *SupplierMatcher) tokens(s string) []string {
	words := strings.FieldsFunc(NormalizeName(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len(w) > 1 && !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// similarity Jaccard sobre conjuntos de tokens.
func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	other := make(map[string]bool, len(b))
	for _, t := range b {
		if other[t] {
			continue
		}
		other[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
