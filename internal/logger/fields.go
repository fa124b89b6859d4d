package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldComponent names the engine part that wrote the entry.
	FieldComponent = "component"
	// FieldKBSource is where the knowledge base was loaded from.
	FieldKBSource = "kb_source"
	// FieldRole is an archetype name.
	FieldRole = "role"
	// FieldStrategy is the archetype lookup strategy that produced a match.
	FieldStrategy = "strategy"
	// FieldCandidate identifies a CV in batch runs.
	FieldCandidate = "candidate"
	// FieldProvider and FieldModel describe the advisor backend.
	FieldProvider = "advisor_provider"
	FieldModel    = "advisor_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// EngineFields describes a component working against a knowledge base.
func EngineFields(component, kbSource string) []zap.Field {
	return StringFields(
		StringField{Key: FieldComponent, Value: component},
		StringField{Key: FieldKBSource, Value: kbSource},
	)
}

// AdvisorFields describes the advisor provider and model.
func AdvisorFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// ForComponent returns logger tagged with the engine fields.
func ForComponent(logger *zap.Logger, component, kbSource string) *zap.Logger {
	return WithFields(logger, EngineFields(component, kbSource)...)
}
