package normalizer

// Output names the consumers rely on. The default translations keep both.
const (
	CountryColumn = "País"
	TeamColumn    = "Equipe"
)

// Translations renames source column names to display names. It is immutable
// once built and safe to share.
type Translations struct {
	names map[string]string
}

// NewTranslations copies m into a Translations table
func NewTranslations(m map[string]string) Translations {
	names := make(map[string]string, len(m))
	for k, v := range m {
		names[k] = v
	}
	return Translations{names: names}
}

// DefaultTranslations returns the Portuguese display names for the Big 5 table
func DefaultTranslations() Translations {
	return NewTranslations(map[string]string{
		"Class.":    "Classificação",
		"País":      CountryColumn,
		"LgRk":      "Posição na Liga",
		"MP":        "Jogos Disputados",
		"V":         "Vitórias",
		"E":         "Empates",
		"D":         "Derrotas",
		"GP":        "Gols pró",
		"GC":        "Gols contra",
		"GD":        "Diferença de Gols",
		"Pt":        "Pontos",
		"Pts/PPJ":   "Pontos/Partida",
		"xG":        "Gols previstos",
		"xGA":       "xG sofrido",
		"xGD":       "Diferença xG",
		"xGD/90":    "Diferença xG/90",
		"Últimos 5": "Últimas cinco partidas",
		"Público":   "Comparecimento/Jogo",
	})
}

// Translate returns the display name for name, or name itself when no entry exists
func (t Translations) Translate(name string) string {
	if out, ok := t.names[name]; ok {
		return out
	}
	return name
}
