// internal/notifications/templates/registry.go
package templates

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Registry maps notification types to their templates. Loaded once at
// construction and never mutated afterwards, so lookups need no locking.
type Registry struct {
	templates map[string]models.NotificationTemplate
	logger    logger.Logger
}

// NewRegistry builds a registry preloaded with the engine's built-in templates.
func NewRegistry(log logger.Logger) *Registry {
	r := &Registry{
		templates: make(map[string]models.NotificationTemplate, len(builtinTemplates)),
		logger:    log.WithFields(map[string]interface{}{"component": "template-registry"}),
	}
	for _, t := range builtinTemplates {
		r.templates[t.Type] = t
	}
	return r
}

// Get returns the template for a notification type.
func (r *Registry) Get(notificationType string) (models.NotificationTemplate, error) {
	t, ok := r.templates[notificationType]
	if !ok {
		return models.NotificationTemplate{}, errors.NewTemplateNotFoundError(notificationType)
	}
	return t, nil
}

// Render substitutes {variable} tokens in the template's title and body.
// Unresolved tokens are left verbatim so a missing variable degrades to a
// visibly broken string instead of a failure; a warning is logged when that
// happens.
func (r *Registry) Render(notificationType string, variables map[string]string) (title, body string, err error) {
	t, err := r.Get(notificationType)
	if err != nil {
		return "", "", err
	}

	title, titleMissing := renderString(t.Title, variables)
	body, bodyMissing := renderString(t.Body, variables)

	if len(titleMissing) > 0 || len(bodyMissing) > 0 {
		r.logger.Warn("template rendered with unresolved variables", map[string]interface{}{
			"type":    notificationType,
			"missing": append(titleMissing, bodyMissing...),
		})
	}

	return title, body, nil
}

// LoadFile merges template definitions from a JSON file over the built-ins.
// The file is validated against templateFileSchema before any merge, so a
// malformed registry fails at startup rather than at render time.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template registry %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(templateFileSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return errors.NewTemplateRegistryInvalidError(err.Error())
	}
	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += desc.String()
		}
		return errors.NewTemplateRegistryInvalidError(details)
	}

	var loaded []models.NotificationTemplate
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("decode template registry %s: %w", path, err)
	}

	for _, t := range loaded {
		r.templates[t.Type] = t
	}

	r.logger.Info("template registry file merged", map[string]interface{}{
		"path":  path,
		"count": len(loaded),
	})
	return nil
}

// Types returns the registered notification types.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.templates))
	for t := range r.templates {
		types = append(types, t)
	}
	return types
}

const templateFileSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["type", "title", "body", "defaultPriority", "defaultChannels"],
		"properties": {
			"type": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1},
			"body": {"type": "string", "minLength": 1},
			"defaultPriority": {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
			"defaultChannels": {
				"type": "array",
				"items": {"type": "string", "enum": ["in_app", "email", "sms", "push"]}
			},
			"requiredVars": {
				"type": "array",
				"items": {"type": "string"}
			}
		},
		"additionalProperties": false
	}
}`
