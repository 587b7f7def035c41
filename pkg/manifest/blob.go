package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/classify"
)

// field is one member of an ordered JSON object
type field struct {
	key   string
	value any
}

// object is a JSON object that keeps insertion order when encoded
type object []field

// BuildMetadataBlob renders the single-line metadata record stored in the
// SKILL.md header:
//
//	{"openclaw": {"emoji": ..., "os": [...], "homepage": ..., "requires": {...}, "primaryEnv": ...}}
//
// Empty requirement lists and an empty primaryEnv are omitted. Members are
// separated by ", " and keys by ": " and non-ASCII text is written as is.
func BuildMetadataBlob(emoji string, os []string, homepage string, req classify.Requirements) (string, error) {
	requires := object{}
	if len(req.Bins) > 0 {
		requires = append(requires, field{"bins", req.Bins})
	}
	if len(req.AnyBins) > 0 {
		requires = append(requires, field{"anyBins", req.AnyBins})
	}
	if len(req.Env) > 0 {
		requires = append(requires, field{"env", req.Env})
	}

	openclaw := object{
		{"emoji", emoji},
		{"os", nonNil(os)},
		{"homepage", homepage},
		{"requires", requires},
	}
	if req.PrimaryEnv != "" {
		openclaw = append(openclaw, field{"primaryEnv", req.PrimaryEnv})
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, object{{"openclaw", openclaw}}); err != nil {
		return "", errors.Wrap(err, "failed to encode metadata")
	}
	return buf.String(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case object:
		buf.WriteByte('{')
		for i, f := range val {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeScalar(buf, f.key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := writeValue(buf, f.value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []string:
		buf.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeScalar(buf, s); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return writeScalar(buf, val)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
