// Package catalog holds the declarative service metadata: the template
// catalog, the model configurations, and the discovery document built from
// them. Everything here is static, read-only configuration.
package catalog

import "time"

// Template is a named extraction schema available for sessions.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ModelFeatures flags model-specific capabilities.
type ModelFeatures struct {
	RealtimeTranscription bool `json:"realtime_transcription"`
	SpeakerDiarization    bool `json:"speaker_diarization"`
	CustomTemplates       bool `json:"custom_templates"`
}

// Model is one processing model configuration. MaxSessionDuration drives the
// session expiry timestamp at creation.
type Model struct {
	ID                 string        `json:"id"`
	DisplayName        string        `json:"display_name"`
	Languages          []string      `json:"languages"`
	MaxSessionDuration time.Duration `json:"-"`
	ResponseSpeed      string        `json:"response_speed"`
	Features           ModelFeatures `json:"features"`
}

// Catalog bundles the static template and model sets.
type Catalog struct {
	templates []Template
	models    []Model
}

// DefaultModelID is used when a create request omits the model.
const DefaultModelID = "lite"

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		templates: []Template{
			{ID: "soap", Name: "SOAP Note", Description: "Standard Subjective, Objective, Assessment, Plan format for clinical documentation"},
			{ID: "medications", Name: "Medications List", Description: "Structured list of prescribed medications with dosage, frequency, and duration"},
			{ID: "discharge_summary", Name: "Discharge Summary", Description: "Comprehensive discharge documentation including admission details, hospital course, and follow-up"},
			{ID: "progress_note", Name: "Progress Note", Description: "Daily progress notes documenting patient condition and treatment plan updates"},
			{ID: "consultation_note", Name: "Consultation Note", Description: "Specialist consultation documentation with recommendations and findings"},
			{ID: "operative_note", Name: "Operative Note", Description: "Surgical procedure documentation including pre-op, intra-op, and post-op details"},
			{ID: "history_physical", Name: "History & Physical", Description: "Comprehensive patient history and physical examination findings"},
			{ID: "lab_results", Name: "Lab Results", Description: "Structured laboratory test results with values and reference ranges"},
			{ID: "radiology_report", Name: "Radiology Report", Description: "Imaging study findings and radiologist interpretations"},
			{ID: "vitals", Name: "Vital Signs", Description: "Patient vital signs including blood pressure, heart rate, temperature, and oxygen saturation"},
		},
		models: []Model{
			{
				ID:                 "lite",
				DisplayName:        "Lite",
				Languages:          []string{"en", "hi"},
				MaxSessionDuration: 600 * time.Second,
				ResponseSpeed:      "fast",
			},
			{
				ID:                 "pro",
				DisplayName:        "Professional",
				Languages:          []string{"en", "hi", "ta", "te", "bn", "mr", "gu", "kn", "ml", "pa"},
				MaxSessionDuration: 3600 * time.Second,
				ResponseSpeed:      "standard",
				Features: ModelFeatures{
					RealtimeTranscription: true,
					SpeakerDiarization:    true,
					CustomTemplates:       true,
				},
			},
		},
	}
}

// Template looks up a template by id.
func (c *Catalog) Template(id string) (Template, bool) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Model looks up a model by id.
func (c *Catalog) Model(id string) (Model, bool) {
	for _, m := range c.models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Templates returns all available templates.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Models returns all configured models.
func (c *Catalog) Models() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

// Languages returns the union of all model languages, in first-seen order.
func (c *Catalog) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.models {
		for _, lang := range m.Languages {
			if !seen[lang] {
				seen[lang] = true
				out = append(out, lang)
			}
		}
	}
	return out
}
