// Package symbols defines the categories and payloads stored for a
// language-analysis pipeline: classes, functions, variables, and files, each
// referenced by the project-relative path of the file they were extracted from.
package symbols

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/store"
)

// Kind is a symbol category.
type Kind string

const (
	KindClass    Kind = "classes"
	KindFunction Kind = "functions"
	KindVariable Kind = "variables"
	KindFile     Kind = "files"
)

// DB is a symbol database.
type DB = store.Database[Kind, store.Entry]

// NewDatabase creates an empty symbol database.
func NewDatabase() *DB {
	return store.NewDatabase[Kind, store.Entry]()
}

// NewSchema returns a schema with every symbol category registered.
func NewSchema(config schema.Config) *schema.Schema[Kind] {
	s := schema.New[Kind](config)
	schema.Register[Class](s, KindClass)
	schema.Register[Function](s, KindFunction)
	schema.Register[Variable](s, KindVariable)
	schema.Register[File](s, KindFile)
	return s
}

// Class is a type declaration (class, interface, struct, enum).
type Class struct {
	Name    string   `dynamodbav:"id"`        // fully-qualified, e.g., "org.acme.Server"
	Path    string   `dynamodbav:"reference"` // project-relative file path
	Package string   `dynamodbav:"package,omitempty"`
	Kind    string   `dynamodbav:"kind,omitempty"` // "class"|"interface"|"enum"|...
	Start   int      `dynamodbav:"start"`          // 1-based
	End     int      `dynamodbav:"end"`            // 1-based
	Exports []string `dynamodbav:"exports,omitempty"`
}

func (c *Class) ID() string        { return c.Name }
func (c *Class) Reference() string { return c.Path }

// Function is a function, method, or constructor.
type Function struct {
	Name      string `dynamodbav:"id"`
	Path      string `dynamodbav:"reference"`
	Receiver  string `dynamodbav:"receiver,omitempty"`
	Signature string `dynamodbav:"signature,omitempty"`
	Start     int    `dynamodbav:"start"`
	End       int    `dynamodbav:"end"`
}

func (f *Function) ID() string        { return f.Name }
func (f *Function) Reference() string { return f.Path }

// Variable is a package-level variable or constant.
type Variable struct {
	Name  string `dynamodbav:"id"`
	Path  string `dynamodbav:"reference"`
	Type  string `dynamodbav:"type,omitempty"`
	Const bool   `dynamodbav:"const,omitempty"`
	Line  int    `dynamodbav:"line"`
}

func (v *Variable) ID() string        { return v.Name }
func (v *Variable) Reference() string { return v.Path }

// File is a source file. Its id and reference are both the path.
type File struct {
	Path  string `dynamodbav:"reference"`
	Lang  string `dynamodbav:"lang,omitempty"`
	Hash  string `dynamodbav:"hash,omitempty"`
	Lines int    `dynamodbav:"lines,omitempty"`
}

func (f *File) ID() string        { return f.Path }
func (f *File) Reference() string { return f.Path }

// Language returns Lang, falling back to the language inferred from the path.
func (f *File) Language() string {
	if f.Lang != "" {
		return f.Lang
	}
	return InferLang(f.Path)
}

// Lookup returns the entries of kind stored under id that are of type T.
func Lookup[T store.Entry](db *DB, kind Kind, id string) []T {
	var out []T
	for _, e := range db.ByType(kind).Get(id) {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// InFile returns the entries of type T whose reference is path.
func InFile[T store.Entry](db *DB, path string) []T {
	var out []T
	for _, e := range db.ByReference().Get(path) {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Marshal encodes entry as a DynamoDB item tagged with kind, the inverse of
// schema.Schema.Decode for a schema built from config.
func Marshal(config schema.Config, kind Kind, entry store.Entry) (map[string]types.AttributeValue, error) {
	return schema.New[Kind](config).Encode(kind, entry)
}
