// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaID is the $id of the movie document schema.
const SchemaID = "https://marquee.dev/schemas/movie.schema.json"

// GenerateSchema reflects the JSON Schema of a movie Document.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Marquee Movie"
	schema.Description = "A movie document accepted by /api/add and /api/update"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_MARSHAL_FAILED").Wrap(err)
	}
	return data, nil
}

var compiledSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("SCHEMA_PARSE_FAILED").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(SchemaID, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	return sch, nil
})

// Validate checks a document against the movie schema. Violations wrap
// ErrInvalidDocument.
func Validate(doc Document) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("MOVIE_ENCODE_FAILED").Wrap(err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return oops.Code("MOVIE_ENCODE_FAILED").Wrap(err)
	}

	if err := sch.Validate(inst); err != nil {
		return oops.Code("MOVIE_INVALID").
			With("violation", err.Error()).
			Wrapf(ErrInvalidDocument, "%s", violationSummary(err))
	}
	return nil
}

var printer = message.NewPrinter(language.English)

// violationSummary flattens a schema error to its leaf messages.
func violationSummary(err error) string {
	var verr *jschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	var msgs []string
	var walk func(e *jschema.ValidationError)
	walk = func(e *jschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := "/" + strings.Join(e.InstanceLocation, "/")
			msgs = append(msgs, loc+": "+e.ErrorKind.LocalizedString(printer))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(msgs, "; ")
}
