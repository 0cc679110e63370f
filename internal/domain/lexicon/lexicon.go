package lexicon

import (
	"strings"

	"github.com/kalusugan-health/condition-screening/pkg/textnorm"
)

// Entry is a curated condition: an ICD-11 code, a canonical name, and the
// phrases (English and Tagalog) that denote it in free text. Read-only after
// init. The key is always one of the surface forms.
type Entry struct {
	Key            string
	Code           string
	Name           string
	SurfaceForms   []string
	BaseConfidence float64
}

// Lexicon is the in-process condition table seeding every other component.
type Lexicon struct {
	entries []Entry
	byCode  map[string]int
}

// New builds a lexicon from entries, normalizing surface forms and ensuring
// the key is present among them.
func New(entries []Entry) *Lexicon {
	lex := &Lexicon{byCode: make(map[string]int, len(entries))}
	for _, e := range entries {
		e.Key = textnorm.Normalize(e.Key)
		forms := make([]string, 0, len(e.SurfaceForms)+1)
		seen := make(map[string]bool, len(e.SurfaceForms)+1)
		for _, f := range append([]string{e.Key}, e.SurfaceForms...) {
			f = textnorm.Normalize(f)
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			forms = append(forms, f)
		}
		e.SurfaceForms = forms
		lex.byCode[e.Code] = len(lex.entries)
		lex.entries = append(lex.entries, e)
	}
	return lex
}

// Default returns the lexicon seeded from the embedded curated table.
func Default() *Lexicon {
	return New(curated)
}

// Entries returns every entry. The slice must be treated as read-only.
func (l *Lexicon) Entries() []Entry {
	return l.entries
}

// MentalHealth returns the subset of entries in ICD-11 chapter 6.
func (l *Lexicon) MentalHealth() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if strings.HasPrefix(e.Code, "6") {
			out = append(out, e)
		}
	}
	return out
}

// FindBySurface returns every entry with a surface form occurring in the
// normalized text.
func (l *Lexicon) FindBySurface(normalizedText string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		for _, form := range e.SurfaceForms {
			if textnorm.ContainsPhrase(normalizedText, form) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// LookupByCode returns the entry for an ICD-11 code, if curated.
func (l *Lexicon) LookupByCode(code string) (Entry, bool) {
	idx, ok := l.byCode[code]
	if !ok {
		return Entry{}, false
	}
	return l.entries[idx], true
}

// curated is the embedded condition table. Base confidences reflect how
// specific the surface forms are for the condition.
var curated = []Entry{
	{
		Key:  "lagnat",
		Code: "MD90.0", Name: "Fever",
		SurfaceForms:   []string{"fever", "nilalagnat", "may lagnat", "mataas na lagnat", "init ng katawan", "febrile"},
		BaseConfidence: 0.90,
	},
	{
		Key:  "sakit ng ulo",
		Code: "MD81", Name: "Headache",
		SurfaceForms:   []string{"headache", "masakit ang ulo", "sumasakit ang ulo", "migraine", "ulo"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "masakit ang tiyan",
		Code: "DA92.0", Name: "Abdominal pain",
		SurfaceForms:   []string{"sakit ng tiyan", "sumasakit ang tiyan", "abdominal pain", "stomach pain", "stomach ache", "tiyan"},
		BaseConfidence: 0.88,
	},
	{
		Key:  "ubo",
		Code: "MD12", Name: "Cough",
		SurfaceForms:   []string{"cough", "inuubo", "umuubo", "dry cough", "ubong may plema"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "sipon",
		Code: "CA00.0", Name: "Common cold",
		SurfaceForms:   []string{"colds", "runny nose", "may sipon", "baradong ilong", "nasal congestion"},
		BaseConfidence: 0.82,
	},
	{
		Key:  "masakit ang lalamunan",
		Code: "CA02.0", Name: "Acute pharyngitis",
		SurfaceForms:   []string{"sore throat", "sakit ng lalamunan", "namamagang lalamunan", "pharyngitis"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "trangkaso",
		Code: "1E32.0", Name: "Influenza",
		SurfaceForms:   []string{"flu", "influenza", "may trangkaso", "pananakit ng katawan at lagnat"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "hirap huminga",
		Code: "MD90.7", Name: "Shortness of breath",
		SurfaceForms:   []string{"shortness of breath", "difficulty breathing", "hirap sa paghinga", "hinihingal", "hingal"},
		BaseConfidence: 0.88,
	},
	{
		Key:  "hilo",
		Code: "8A80.2", Name: "Dizziness",
		SurfaceForms:   []string{"dizziness", "nahihilo", "pagkahilo", "vertigo", "umiikot ang paningin"},
		BaseConfidence: 0.82,
	},
	{
		Key:  "kabog ng dibdib",
		Code: "MD90.6", Name: "Palpitations",
		SurfaceForms:   []string{"palpitations", "mabilis na tibok ng puso", "kumakabog ang dibdib", "racing heart"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "naduduwal",
		Code: "MD90.1", Name: "Nausea",
		SurfaceForms:   []string{"nausea", "duwal", "nasusuka", "parang masusuka"},
		BaseConfidence: 0.82,
	},
	{
		Key:  "nagsusuka",
		Code: "MD90.2", Name: "Vomiting",
		SurfaceForms:   []string{"vomiting", "suka", "sumusuka", "pagsusuka"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "impatso",
		Code: "DA92.1", Name: "Indigestion",
		SurfaceForms:   []string{"indigestion", "heartburn", "kabag", "maasim ang sikmura", "hirap tunawin"},
		BaseConfidence: 0.80,
	},
	{
		Key:  "di makatulog",
		Code: "7A00", Name: "Insomnia",
		SurfaceForms:   []string{"insomnia", "hindi makatulog", "puyat", "walang tulog", "cannot sleep"},
		BaseConfidence: 0.78,
	},

	// Mental health, ICD-11 chapter 6.
	{
		Key:  "want to die",
		Code: "6A72", Name: "Suicidal ideation",
		SurfaceForms: []string{
			"suicide", "suicidal", "i want to die", "kill myself", "end my life",
			"gusto ko nang mamatay", "ayoko na mabuhay", "magpakamatay",
			"saktan ang sarili", "hurting myself", "self-harm",
		},
		BaseConfidence: 0.95,
	},
	{
		Key:  "kinakabahan",
		Code: "6B00", Name: "Generalised anxiety disorder",
		SurfaceForms: []string{
			"anxiety", "anxious", "kaba", "kabado", "nag-aalala", "sobrang kaba",
			"worried all the time", "palaging kabado", "nerbiyos",
		},
		BaseConfidence: 0.80,
	},
	{
		Key:  "depression",
		Code: "6A70", Name: "Depressive episode",
		SurfaceForms: []string{
			"depressed", "malungkot", "lungkot", "kalungkutan", "nalulumbay",
			"walang gana", "hopeless", "wala nang pag-asa", "laging malungkot",
		},
		BaseConfidence: 0.85,
	},
	{
		Key:  "trauma",
		Code: "6B40", Name: "Post traumatic stress disorder",
		SurfaceForms: []string{
			"ptsd", "flashbacks", "binabangungot", "nightmares", "natatakot pa rin",
			"hindi makalimutan ang nangyari",
		},
		BaseConfidence: 0.85,
	},
	{
		Key:  "bipolar",
		Code: "6A60", Name: "Bipolar disorder",
		SurfaceForms:   []string{"manic", "mania", "mood swings", "biglang nagbabago ang mood"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "schizophrenia",
		Code: "6A20", Name: "Schizophrenia",
		SurfaceForms: []string{
			"psychosis", "psychotic", "hallucinations", "may naririnig na boses",
			"hearing voices", "may nakikitang wala",
		},
		BaseConfidence: 0.90,
	},
	{
		Key:  "eating disorder",
		Code: "6B80", Name: "Anorexia nervosa",
		SurfaceForms:   []string{"anorexia", "ayaw kumain", "hindi kumakain", "takot tumaba"},
		BaseConfidence: 0.85,
	},
	{
		Key:  "substance use",
		Code: "6C40", Name: "Alcohol use disorder",
		SurfaceForms: []string{
			"substance", "alcohol problem", "problema sa alak", "lasing palagi",
			"droga", "adik",
		},
		BaseConfidence: 0.85,
	},
	{
		Key:  "adjustment problem",
		Code: "6B43", Name: "Adjustment disorder",
		SurfaceForms: []string{
			"adjustment", "stress sa school", "academic stress", "family stress",
			"problema sa pamilya", "stress sa trabaho", "hirap mag-adjust",
		},
		BaseConfidence: 0.75,
	},
	{
		Key:  "learning difficulty",
		Code: "6A00", Name: "Disorder of intellectual development",
		SurfaceForms:   []string{"developmental delay", "hirap matuto", "learning problem", "attention problem"},
		BaseConfidence: 0.75,
	},
}
