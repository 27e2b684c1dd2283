package catalog

import "github.com/MedScribeAlliance/scribe-emr-protocol/internal/audio"

// ProtocolName and ProtocolVersion identify the wire protocol served.
const (
	ProtocolName    = "medscribealliance"
	ProtocolVersion = "0.1"
)

// ServiceInfo is the human-facing service metadata in the discovery document.
type ServiceInfo struct {
	Name             string `json:"name"`
	DocumentationURL string `json:"documentation_url,omitempty"`
	SupportEmail     string `json:"support_email,omitempty"`
}

// Endpoints lists the API entry points.
type Endpoints struct {
	BaseURL      string `json:"base_url"`
	WebhooksURL  string `json:"webhooks_url,omitempty"`
	TemplatesURL string `json:"templates_url,omitempty"`
}

// Authentication declares the supported auth methods. Enforcement happens
// upstream of this service.
type Authentication struct {
	SupportedMethods []string `json:"supported_methods"`
}

// Capabilities describes service limits and supported features.
type Capabilities struct {
	AudioFormats            []string `json:"audio_formats"`
	MaxChunkDurationSeconds int      `json:"max_chunk_duration_seconds"`
	UploadMethods           []string `json:"upload_methods"`
	WebhookDelivery         bool     `json:"webhook_delivery"`
	ClientSDKDelivery       bool     `json:"client_sdk_delivery"`
}

// DiscoveryModel is the wire form of a model configuration.
type DiscoveryModel struct {
	ID                        string        `json:"id"`
	DisplayName               string        `json:"display_name"`
	Languages                 []string      `json:"languages"`
	MaxSessionDurationSeconds int           `json:"max_session_duration_seconds"`
	ResponseSpeed             string        `json:"response_speed"`
	Features                  ModelFeatures `json:"features"`
}

// LanguageConfig describes language support.
type LanguageConfig struct {
	Supported     []string `json:"supported"`
	AutoDetection bool     `json:"auto_detection"`
}

// Discovery is the full discovery document returned from the well-known
// endpoint. It is static per deployment and cacheable for hours.
type Discovery struct {
	Protocol          string           `json:"protocol"`
	ProtocolVersion   string           `json:"protocol_version"`
	SupportedVersions []string         `json:"supported_versions"`
	Service           ServiceInfo      `json:"service"`
	Endpoints         Endpoints        `json:"endpoints"`
	Authentication    Authentication   `json:"authentication"`
	Capabilities      Capabilities     `json:"capabilities"`
	Models            []DiscoveryModel `json:"models"`
	Languages         LanguageConfig   `json:"languages"`
}

// BuildDiscovery assembles the discovery document for the given public base
// URL.
func (c *Catalog) BuildDiscovery(baseURL, serviceName, supportEmail string) Discovery {
	models := make([]DiscoveryModel, 0, len(c.models))
	for _, m := range c.models {
		models = append(models, DiscoveryModel{
			ID:                        m.ID,
			DisplayName:               m.DisplayName,
			Languages:                 m.Languages,
			MaxSessionDurationSeconds: int(m.MaxSessionDuration.Seconds()),
			ResponseSpeed:             m.ResponseSpeed,
			Features:                  m.Features,
		})
	}

	return Discovery{
		Protocol:          ProtocolName,
		ProtocolVersion:   ProtocolVersion,
		SupportedVersions: []string{ProtocolVersion},
		Service: ServiceInfo{
			Name:             serviceName,
			DocumentationURL: baseURL + "/docs",
			SupportEmail:     supportEmail,
		},
		Endpoints: Endpoints{
			BaseURL:      baseURL + "/v1",
			TemplatesURL: baseURL + "/v1/templates",
		},
		Authentication: Authentication{
			SupportedMethods: []string{"api_key", "oidc"},
		},
		Capabilities: Capabilities{
			AudioFormats:            audio.SupportedFormats(),
			MaxChunkDurationSeconds: 20,
			UploadMethods:           []string{"chunked", "single", "stream"},
			WebhookDelivery:         false,
			ClientSDKDelivery:       true,
		},
		Models: models,
		Languages: LanguageConfig{
			Supported:     c.Languages(),
			AutoDetection: true,
		},
	}
}
