package schema_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/refstore/schema"
)

// --- Test Entry Types ---

type Tag string

type Note struct {
	Key  string `dynamodbav:"id"`
	Path string `dynamodbav:"reference"`
	Body string `dynamodbav:"body"`
}

func (n *Note) ID() string        { return n.Key }
func (n *Note) Reference() string { return n.Path }

type Link struct {
	Key    string `dynamodbav:"id"`
	Path   string `dynamodbav:"reference"`
	Target string `dynamodbav:"target"`
}

func (l *Link) ID() string        { return l.Key }
func (l *Link) Reference() string { return l.Path }

func newSchema() *schema.Schema[Tag] {
	s := schema.New[Tag](schema.DefaultConfig())
	schema.Register[Note](s, "notes")
	schema.Register[Link](s, "links")
	return s
}

func item(attrs map[string]string) schema.Item {
	out := schema.Item{}
	for k, v := range attrs {
		out[k] = &types.AttributeValueMemberS{Value: v}
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := schema.DefaultConfig()

	if cfg.CategoryAttr != "entity_type" {
		t.Errorf("expected CategoryAttr 'entity_type', got %q", cfg.CategoryAttr)
	}
	if cfg.IDAttr != "id" || cfg.ReferenceAttr != "reference" || cfg.TTLAttr != "ttl" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestNew_FillsEmptyConfig(t *testing.T) {
	s := schema.New[Tag](schema.Config{IDAttr: "sym"})

	cfg := s.Config()
	if cfg.IDAttr != "sym" {
		t.Errorf("expected IDAttr 'sym' to be kept, got %q", cfg.IDAttr)
	}
	if cfg.CategoryAttr != "entity_type" {
		t.Errorf("expected CategoryAttr default, got %q", cfg.CategoryAttr)
	}
}

func TestRegister_Categories(t *testing.T) {
	s := newSchema()
	schema.Register[Note](s, "notes")

	cats := s.Categories()
	if fmt.Sprint(cats) != "[notes links]" {
		t.Errorf("expected [notes links], got %v", cats)
	}
	if !s.Has("links") || s.Has("tags") {
		t.Error("unexpected Has result")
	}
}

func TestDecode(t *testing.T) {
	s := newSchema()

	category, entry, err := s.Decode(item(map[string]string{
		"entity_type": "links",
		"id":          "L1",
		"reference":   "ws1/a.md",
		"target":      "ws1/b.md",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != "links" {
		t.Errorf("expected category 'links', got %q", category)
	}
	link, ok := entry.(*Link)
	if !ok {
		t.Fatalf("expected *Link, got %T", entry)
	}
	if link.Target != "ws1/b.md" || link.ID() != "L1" || link.Reference() != "ws1/a.md" {
		t.Errorf("unexpected link: %+v", link)
	}
}

func TestDecode_CustomAttributeNames(t *testing.T) {
	s := schema.New[Tag](schema.Config{IDAttr: "pk", ReferenceAttr: "doc"})
	schema.Register[Note](s, "notes")

	_, entry, err := s.Decode(item(map[string]string{
		"entity_type": "notes",
		"pk":          "N1",
		"doc":         "ws1/a.md",
		"body":        "hello",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, ok := entry.(*Note)
	if !ok {
		t.Fatalf("expected *Note, got %T", entry)
	}
	if note.Key != "N1" || note.Path != "ws1/a.md" || note.Body != "hello" {
		t.Errorf("unexpected note: %+v", note)
	}
}

func TestEncode(t *testing.T) {
	s := schema.New[Tag](schema.Config{IDAttr: "pk", ReferenceAttr: "doc"})
	schema.Register[Link](s, "links")

	raw, err := s.Encode("links", &Link{Key: "L1", Path: "ws1/a.md", Target: "ws1/b.md"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{schema.PayloadIDKey, schema.PayloadReferenceKey} {
		if _, ok := raw[key]; ok {
			t.Errorf("expected no %q attribute in encoded item", key)
		}
	}

	id, err := s.Identity(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Category != "links" || id.ID != "L1" || id.Reference != "ws1/a.md" {
		t.Errorf("unexpected identity: %+v", id)
	}

	_, entry, err := s.Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link := entry.(*Link)
	if link.Key != "L1" || link.Path != "ws1/a.md" || link.Target != "ws1/b.md" {
		t.Errorf("unexpected link: %+v", link)
	}
}

func TestDecode_Errors(t *testing.T) {
	s := newSchema()

	tests := []struct {
		name     string
		attrs    map[string]string
		expected error
	}{
		{"missing category", map[string]string{"id": "1", "reference": "r"}, schema.ErrMissingAttribute},
		{"unknown category", map[string]string{"entity_type": "tags", "id": "1", "reference": "r"}, schema.ErrUnknownCategory},
		{"missing id", map[string]string{"entity_type": "notes", "reference": "r"}, schema.ErrMissingAttribute},
		{"missing reference", map[string]string{"entity_type": "notes", "id": "1"}, schema.ErrMissingAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Decode(item(tt.attrs))
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestDecode_UnmarshalError(t *testing.T) {
	s := newSchema()

	raw := item(map[string]string{"entity_type": "notes", "id": "1", "reference": "r"})
	raw["body"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}

	_, _, err := s.Decode(raw)
	if err == nil {
		t.Fatal("expected unmarshal error for a list into a string field")
	}
	if errors.Is(err, schema.ErrMissingAttribute) || errors.Is(err, schema.ErrUnknownCategory) {
		t.Errorf("expected a plain unmarshal error, got %v", err)
	}
}

func TestIdentity(t *testing.T) {
	s := newSchema()

	id, err := s.Identity(item(map[string]string{"entity_type": "tags", "id": "1", "reference": "ws/a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Category != "tags" || id.ID != "1" || id.Reference != "ws/a" {
		t.Errorf("unexpected identity: %+v", id)
	}

	if _, err := s.Identity(item(map[string]string{"entity_type": "tags", "id": "1"})); !errors.Is(err, schema.ErrMissingAttribute) {
		t.Errorf("expected ErrMissingAttribute, got %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	s := newSchema()

	tests := []struct {
		name     string
		item     schema.Item
		expected bool
	}{
		{
			name:     "no TTL attribute",
			item:     schema.Item{},
			expected: false,
		},
		{
			name: "TTL in past",
			item: schema.Item{
				"ttl": &types.AttributeValueMemberN{Value: "1000000000"}, // 2001
			},
			expected: true,
		},
		{
			name: "TTL in future",
			item: schema.Item{
				"ttl": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix()+3600)},
			},
			expected: false,
		},
		{
			name: "TTL not a number",
			item: schema.Item{
				"ttl": &types.AttributeValueMemberS{Value: "1000000000"},
			},
			expected: false,
		},
		{
			name: "TTL unparseable",
			item: schema.Item{
				"ttl": &types.AttributeValueMemberN{Value: "soon"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsExpired(tt.item); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
