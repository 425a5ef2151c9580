package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// LanguageProfile bundles the language-specific markers and patterns that
// drive the parser. Profiles are immutable after construction and safe to
// share across concurrent extractions.
type LanguageProfile struct {
	Code string

	// TestIndicators are the bullet-prefixed verb phrases that open a test
	// procedure line, e.g. "• Examine".
	TestIndicators []string

	// VerbAnywhere relaxes test line detection to any bullet line containing
	// one of TestVerbs. German SAQ documents put the verb at the end of the
	// sentence, so a prefix match alone misses most test lines.
	VerbAnywhere bool
	TestVerbs    []string

	ApplicabilityMarker string
	GuidanceMarker      string

	// IgnorePatterns match whole lines that carry no requirement content
	// (headers, footers, answer column labels).
	IgnorePatterns []*regexp.Regexp

	// BoilerplatePatterns are removed from the raw page text during
	// canonicalization, in order.
	BoilerplatePatterns []*regexp.Regexp

	// AnswerTokens enumerate the compliance answer column values, longest
	// first. Any run of two or more tokens is stripped as a table artifact.
	AnswerTokens []string

	// Fallback page indices (zero-based) when anchor detection fails.
	FallbackStartPage int
	FallbackEndPage   int

	answerRun *regexp.Regexp
}

// answerRunPattern builds the pattern matching any contiguous run of two or
// more answer table tokens, covering partial fragments of the enumeration
// that survive column flattening.
func answerRunPattern(tokens []string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`)
	}
	alt := strings.Join(quoted, "|")
	return regexp.MustCompile(`(?i)(?:` + alt + `)(?:\s+(?:` + alt + `))+`)
}

func newProfile(p LanguageProfile) *LanguageProfile {
	if len(p.AnswerTokens) > 0 {
		p.answerRun = answerRunPattern(p.AnswerTokens)
	}
	return &p
}

// removalPatterns returns the full artifact removal set: the configured
// boilerplate patterns followed by the generated answer table run pattern.
func (p *LanguageProfile) removalPatterns() []*regexp.Regexp {
	if p.answerRun == nil {
		return p.BoilerplatePatterns
	}
	out := make([]*regexp.Regexp, 0, len(p.BoilerplatePatterns)+1)
	out = append(out, p.BoilerplatePatterns...)
	return append(out, p.answerRun)
}

// IsTestLine reports whether a line opens a test procedure.
func (p *LanguageProfile) IsTestLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, ind := range p.TestIndicators {
		if strings.HasPrefix(trimmed, ind) {
			return true
		}
	}
	if p.VerbAnywhere && strings.HasPrefix(trimmed, "•") {
		lower := strings.ToLower(trimmed)
		for _, verb := range p.TestVerbs {
			if strings.Contains(lower, verb) {
				return true
			}
		}
	}
	return false
}

// ShouldIgnore reports whether a line is document chrome rather than
// requirement content. Lines of two characters or fewer are noise.
func (p *LanguageProfile) ShouldIgnore(line string) bool {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) <= 2 {
		return true
	}
	for _, pat := range p.IgnorePatterns {
		if pat.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// indicatorVerbs returns the bare action verbs of the test indicators, with
// the bullet marker stripped.
func (p *LanguageProfile) indicatorVerbs() []string {
	verbs := make([]string, 0, len(p.TestIndicators))
	for _, ind := range p.TestIndicators {
		verbs = append(verbs, strings.TrimSpace(strings.TrimPrefix(ind, "•")))
	}
	return verbs
}

func mustCompileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Built-in profiles for the five SAQ document languages. Marker strings and
// patterns follow the official PCI SSC terminology of each translation.
var builtinProfiles = map[string]*LanguageProfile{
	"EN": newProfile(LanguageProfile{
		Code:                "EN",
		TestIndicators:      []string{"• Examine", "• Observe", "• Interview", "• Verify", "• Inspect"},
		ApplicabilityMarker: "Applicability Notes",
		GuidanceMarker:      "Guidance",
		AnswerTokens: []string{
			"In Place with CCW", "Not in Place", "Not Applicable", "Not Tested", "In Place", "CCW",
		},
		BoilerplatePatterns: mustCompileAll(
			`(?is)PCI DSS v[\d.]+ SAQ D for Merchants.*?October \d{4}`,
			`(?is)SAQ D of PCI DSS v[\d.]+.*?Page \d+`,
			`(?i)© 2006\s*[−-]\s*\d+.*?LLC\.?\s*All Rights Reserved\.?`,
			`(?i)October \d{4}`,
			`(?i)♦\s*Refer to[^\n]*`,
			`(?i)\(Check one response[^)]*\)`,
			`(?i)Section \d+\s*:`,
			`(?im)^Page \d+\s*$`,
		),
		IgnorePatterns: mustCompileAll(
			`(?i)^PCI DSS SAQ D`,
			`(?i)^© 2006[−-]?\d*`,
			`(?i)^Page \d+`,
			`(?i)^October \d{4}`,
			`(?i)^PCI DSS Requirement`,
			`(?i)^Expected Testing`,
			`(?i)^Testing Procedures`,
			`(?i)^Response`,
			`(?i)^In Place`,
			`(?i)^Not in Place`,
			`(?i)^Not Applicable`,
			`(?i)^Not Tested`,
			`(?i)^♦ Refer`,
			`(?i)^\(Check one response`,
			`(?i)^Section \d+`,
			`(?i)^All Rights Reserved`,
			`(?i)^LLC\.`,
			`(?i)^PCI Security Standards Council`,
			`(?i)^Self\s*-?\s*Assessment Questionnaire`,
			`(?i)^PCI DSS v[\d.]+`,
		),
		FallbackStartPage: 15,
		FallbackEndPage:   128,
	}),
	"FR": newProfile(LanguageProfile{
		Code:                "FR",
		TestIndicators:      []string{"• Examiner", "• Observer", "• Interroger", "• Vérifier", "• Inspecter"},
		ApplicabilityMarker: "Notes d'Applicabilité",
		GuidanceMarker:      "Conseils",
		AnswerTokens: []string{
			"En Place avec CCW", "Pas en Place", "Non Applicable", "Non Testé", "En Place", "CCW",
		},
		BoilerplatePatterns: mustCompileAll(
			`(?is)SAQ D de PCI DSS v[\d.]+.*?Page \d+.*?(?:En Place|Pas en Place)`,
			`(?i)© 2006-\d+.*?LLC\.?\s*.*?Tous Droits Réservés\.?`,
			`(?i)Octobre \d{4}`,
			`(?i)♦\s*Se reporter[^\n]*`,
			`(?i)\(Cocher une réponse[^)]*\)`,
			`(?i)Section \d+\s*:`,
			`(?im)^Page \d+\s*$`,
		),
		IgnorePatterns: mustCompileAll(
			`(?i)^SAQ D de PCI DSS`,
			`(?i)^© 2006-\d+`,
			`(?i)^Page \d+`,
			`(?i)^Octobre \d{4}`,
			`(?i)^Exigence de PCI DSS`,
			`(?i)^Tests Prévus`,
			`(?i)^Réponse`,
			`(?i)^En Place`,
			`(?i)^Pas en Place`,
			`(?i)^Non Applicable`,
			`(?i)^Non Testé`,
			`(?i)^♦ Se reporter`,
			`(?i)^\(Cocher une réponse`,
			`(?i)^Section \d+`,
			`(?i)^Tous Droits Réservés`,
			`(?i)^LLC\.`,
			`(?i)^PCI Security Standards Council`,
		),
		FallbackStartPage: 15,
		FallbackEndPage:   128,
	}),
	"DE": newProfile(LanguageProfile{
		Code:           "DE",
		TestIndicators: []string{"• Untersuchen", "• Befragen", "• Prüfen", "• Überprüfen", "• Bewerten", "• Beobachten"},
		VerbAnywhere:   true,
		TestVerbs: []string{
			"untersuchen", "befragen", "prüfen", "überprüfen",
			"bewerten", "beobachten", "kontrollieren", "inspizieren",
		},
		ApplicabilityMarker: "Hinweise zur Anwendbarkeit",
		GuidanceMarker:      "Leitfaden",
		AnswerTokens: []string{
			"Erfüllt mit CCW", "Nicht erfüllt", "Nicht anwendbar", "Nicht getestet",
			"Nicht Vorhanden", "Vorhanden mit CCW", "Erfüllt", "Vorhanden", "CCW",
		},
		BoilerplatePatterns: mustCompileAll(
			`(?is)PCI DSS v[\d.]+\s+SAQ D für Händler.*?Oktober \d{4}`,
			`(?is)SAQ D von PCI DSS v[\d.]+.*?Seite \d+.*?(?:Erfüllt|Nicht erfüllt)`,
			`(?i)© 2006\s*[−-]\s*\d+.*?LLC\.?\s*.*?Alle Rechte vorbehalten\.?(?:\s*Seite\s+\d+)?`,
			`(?i)Alle Rechte vorbehalten[^\n]*?Seite \d+`,
			`(?i)Oktober \d{4}`,
			`(?i)♦\s*Informationen zu diesen[^\n]*`,
			`(?i)Anforderung Erwartetes Testen Antwort♦[^\n]*`,
			`(?i)\(Eine Antwort (?:für jede Anforderung )?ankreuzen[^)]*\)`,
			`(?i)Abschnitt\s+\d+\s*:\s*(?:Selbstbewertungsfragebogen|Fragebogen zur Selbstbewertung)[^\n]*`,
			`(?i)Abschnitt \d+\s*:`,
			`(?im)Testverfahren\s*$`,
			`(?im)^Seite \d+\s*$`,
		),
		IgnorePatterns: mustCompileAll(
			`(?i)^PCI DSS SAQ D`,
			`(?i)^© 2006[−-]?\d*`,
			`(?i)^Seite \d+`,
			`(?i)^Oktober \d{4}`,
			`(?i)^Anforderung`,
			`(?i)^Testverfahren`,
			`(?i)^Erwartetes Testen`,
			`(?i)^Antwort`,
			`(?i)^Erfüllt`,
			`(?i)^Nicht erfüllt`,
			`(?i)^Nicht anwendbar`,
			`(?i)^Nicht getestet`,
			`(?i)^Vorhanden`,
			`(?i)^Nicht Vorhanden`,
			`(?i)^♦ Informationen`,
			`(?i)^\(Eine Antwort`,
			`(?i)^Abschnitt \d+`,
			`(?i)^Alle Rechte vorbehalten`,
			`(?i)^LLC\.`,
			`(?i)^PCI Security Standards Council`,
			`(?i)^Selbstbewertungsfragebogen`,
			`(?i)^Fragebogen zur Selbstbewertung`,
			`(?i)^PCI DSS v[\d.]+`,
		),
		FallbackStartPage: 15,
		FallbackEndPage:   128,
	}),
	"ES": newProfile(LanguageProfile{
		Code:                "ES",
		TestIndicators:      []string{"• Examinar", "• Observar", "• Entrevistar", "• Verificar", "• Inspeccionar"},
		ApplicabilityMarker: "Notas de Aplicabilidad",
		GuidanceMarker:      "Orientación",
		AnswerTokens: []string{
			"Implementado con CCW", "No implementado", "No aplicable", "No probado", "Implementado", "CCW",
		},
		BoilerplatePatterns: mustCompileAll(
			`(?is)SAQ D de PCI DSS v[\d.]+.*?Página \d+.*?(?:Implementado|No implementado)`,
			`(?i)© 2006-\d+.*?LLC\.?\s*.*?Todos los Derechos Reservados\.?`,
			`(?i)Octubre de \d{4}`,
			`(?i)♦\s*Consulte[^\n]*`,
			`(?i)\(Marque una respuesta[^)]*\)`,
			`(?i)Sección \d+\s*:`,
			`(?im)^Página \d+\s*$`,
		),
		IgnorePatterns: mustCompileAll(
			`(?i)^SAQ D de PCI DSS`,
			`(?i)^© 2006-\d+`,
			`(?i)^Página \d+`,
			`(?i)^Octubre de \d{4}`,
			`(?i)^Requisito de PCI DSS`,
			`(?i)^Pruebas Previstas`,
			`(?i)^Respuesta`,
			`(?i)^Implementado`,
			`(?i)^No implementado`,
			`(?i)^No aplicable`,
			`(?i)^No probado`,
			`(?i)^♦ Consulte`,
			`(?i)^\(Marque una respuesta`,
			`(?i)^Sección \d+`,
			`(?i)^Todos los Derechos Reservados`,
			`(?i)^LLC\.`,
			`(?i)^PCI Security Standards Council`,
			`(?i)^Cuestionario de Autoevaluación`,
			`(?i)^PCI DSS v[\d.]+`,
		),
		FallbackStartPage: 15,
		FallbackEndPage:   128,
	}),
	"PT": newProfile(LanguageProfile{
		Code:                "PT",
		TestIndicators:      []string{"• Examinar", "• Observar", "• Entrevistar", "• Verificar", "• Inspecionar"},
		ApplicabilityMarker: "Notas de Aplicabilidade",
		GuidanceMarker:      "Orientação",
		AnswerTokens: []string{
			"Implementado com CCW", "Não implementado", "Não aplicável", "Não testado", "Implementado", "CCW",
		},
		BoilerplatePatterns: mustCompileAll(
			`(?is)SAQ D do PCI DSS v[\d.]+.*?Página \d+.*?(?:Implementado|Não implementado)`,
			`(?i)© 2006-\d+.*?LLC\.?\s*.*?Todos os Direitos Reservados\.?`,
			`(?i)Outubro de \d{4}`,
			`(?i)♦\s*Consulte[^\n]*`,
			`(?i)\(Marque uma resposta[^)]*\)`,
			`(?i)Seção \d+\s*:`,
			`(?im)^Página \d+\s*$`,
		),
		IgnorePatterns: mustCompileAll(
			`(?i)^SAQ D do PCI DSS`,
			`(?i)^© 2006-\d+`,
			`(?i)^Página \d+`,
			`(?i)^Outubro de \d{4}`,
			`(?i)^Requisito do PCI DSS`,
			`(?i)^Testes Esperados`,
			`(?i)^Resposta`,
			`(?i)^Implementado`,
			`(?i)^Não implementado`,
			`(?i)^Não aplicável`,
			`(?i)^Não testado`,
			`(?i)^♦ Consulte`,
			`(?i)^\(Marque uma resposta`,
			`(?i)^Seção \d+`,
			`(?i)^Todos os Direitos Reservados`,
			`(?i)^LLC\.`,
			`(?i)^PCI Security Standards Council`,
			`(?i)^Questionário de Autoavaliação`,
			`(?i)^PCI DSS v[\d.]+`,
		),
		FallbackStartPage: 15,
		FallbackEndPage:   128,
	}),
}

// ProfileFor returns the built-in profile for a language code.
func ProfileFor(code string) (*LanguageProfile, error) {
	p, ok := builtinProfiles[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("no language profile for code %q", code)
	}
	return p, nil
}

// ProfileCodes lists the built-in language codes in stable order.
func ProfileCodes() []string {
	return []string{"EN", "FR", "DE", "ES", "PT"}
}

// languageIndicators maps filename fragments to language codes, checked in
// ProfileCodes order so English wins ties.
var languageIndicators = map[string][]string{
	"EN": {"_en.pdf", "_en.csv", "-en.pdf", "-en.csv", "_en_", "-en_", "english"},
	"FR": {"_fr.pdf", "_fr.csv", "-fr.pdf", "-fr.csv", "_fr_", "-fr_", "french", "francais", "merchant-fr", "-merchant-fr"},
	"ES": {"_es.pdf", "_es.csv", "-es.pdf", "-es.csv", "_es_", "-es_", "spanish", "espanol", "merchant-es", "-merchant-es"},
	"DE": {"_de.pdf", "_de.csv", "-de.pdf", "-de.csv", "_de_", "-de_", "german", "deutsch", "merchant-de", "-merchant-de"},
	"PT": {"_pt.pdf", "_pt.csv", "-pt.pdf", "-pt.csv", "_pt_", "-pt_", "portuguese", "portugues", "merchant-pt", "-merchant-pt"},
}

// DetectLanguage guesses the document language from its filename, falling
// back to English when no indicator matches.
func DetectLanguage(filename string) string {
	lower := strings.ToLower(filename)
	for _, code := range ProfileCodes() {
		for _, ind := range languageIndicators[code] {
			if strings.Contains(lower, ind) {
				return code
			}
		}
	}
	return "EN"
}

// profileFile is the YAML schema for user-supplied profiles.
type profileFile struct {
	Code                string   `yaml:"code"`
	TestIndicators      []string `yaml:"test_indicators"`
	VerbAnywhere        bool     `yaml:"verb_anywhere"`
	TestVerbs           []string `yaml:"test_verbs"`
	ApplicabilityMarker string   `yaml:"applicability_marker"`
	GuidanceMarker      string   `yaml:"guidance_marker"`
	IgnorePatterns      []string `yaml:"ignore_patterns"`
	BoilerplatePatterns []string `yaml:"boilerplate_patterns"`
	AnswerTokens        []string `yaml:"answer_tokens"`
	FallbackStartPage   int      `yaml:"fallback_start_page"`
	FallbackEndPage     int      `yaml:"fallback_end_page"`
}

// LoadProfile reads a LanguageProfile from a YAML file, for documents whose
// language or layout is not covered by the built-ins.
func LoadProfile(path string) (*LanguageProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile builds a LanguageProfile from YAML bytes.
func ParseProfile(data []byte) (*LanguageProfile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if pf.Code == "" {
		return nil, fmt.Errorf("profile is missing a language code")
	}
	if len(pf.TestIndicators) == 0 {
		return nil, fmt.Errorf("profile %s has no test indicators", pf.Code)
	}

	p := LanguageProfile{
		Code:                strings.ToUpper(pf.Code),
		TestIndicators:      pf.TestIndicators,
		VerbAnywhere:        pf.VerbAnywhere,
		TestVerbs:           pf.TestVerbs,
		ApplicabilityMarker: pf.ApplicabilityMarker,
		GuidanceMarker:      pf.GuidanceMarker,
		AnswerTokens:        pf.AnswerTokens,
		FallbackStartPage:   pf.FallbackStartPage,
		FallbackEndPage:     pf.FallbackEndPage,
	}

	for _, pat := range pf.IgnorePatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pat, err)
		}
		p.IgnorePatterns = append(p.IgnorePatterns, re)
	}
	for _, pat := range pf.BoilerplatePatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("invalid boilerplate pattern %q: %w", pat, err)
		}
		p.BoilerplatePatterns = append(p.BoilerplatePatterns, re)
	}

	return newProfile(p), nil
}
