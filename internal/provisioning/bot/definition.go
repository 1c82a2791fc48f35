package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	builtinPrefix         = "AMAZON."
	kendraSearchSignature = "AMAZON.KendraSearchIntent"
	latestVersion         = "$LATEST"
	codeHookType          = "CodeHook"
	defaultMessageVersion = "1.0"
)

// document is one object of a Lex export, kept as generic JSON so that
// every field of the export reaches the put call unchanged.
type document map[string]any

// definition is the "resource" section of a Lex bot export.
type definition struct {
	Bot       document
	SlotTypes []document
	Intents   []document
}

// parseDefinition splits an exported bot into its layers.
func parseDefinition(data []byte) (*definition, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("bot definition is not valid JSON: %w", err)
	}
	resource, ok := root["resource"].(map[string]any)
	if !ok {
		return nil, errors.New(`bot definition has no "resource" object`)
	}
	bot := document(resource)
	if bot.str("name") == "" {
		return nil, errors.New("bot definition has no name")
	}

	def := &definition{
		Bot:       bot,
		SlotTypes: bot.docs("slotTypes"),
		Intents:   bot.docs("intents"),
	}
	delete(bot, "slotTypes")
	delete(bot, "intents")
	delete(bot, "version")
	return def, nil
}

func (d document) str(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d document) doc(key string) document {
	m, _ := d[key].(map[string]any)
	return document(m)
}

func (d document) docs(key string) []document {
	raw, _ := d[key].([]any)
	out := make([]document, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, document(m))
		}
	}
	return out
}

// setChecksum copies the remote checksum into the payload, or removes any
// checksum carried over from the export when the object does not exist.
func (d document) setChecksum(checksum *string) {
	if checksum == nil || *checksum == "" {
		delete(d, "checksum")
		return
	}
	d["checksum"] = *checksum
}

// decodeInto converts the document into an SDK input struct. Field names
// of the export match the SDK fields case-insensitively.
func (d document) decodeInto(v any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func isBuiltin(name string) bool {
	return strings.HasPrefix(name, builtinPrefix)
}
