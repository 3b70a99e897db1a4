// Package schema associates category tags with concrete entry types and
// decodes DynamoDB items into entries.
//
// Payload types are registered once per category:
//
//	s := schema.New[Kind](schema.DefaultConfig())
//	schema.Register[Class](s, "classes")
//	schema.Register[Function](s, "functions")
//
// Register only accepts types whose pointer implements [store.Entry], so the
// category-to-payload mapping is checked at compile time.
package schema

import (
	"fmt"
	"maps"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/refstore/store"
)

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// Payload types tag their id and reference fields with these names. Items
// stored under other attribute names (Config.IDAttr, Config.ReferenceAttr)
// are translated on the way in and out.
const (
	PayloadIDKey        = "id"
	PayloadReferenceKey = "reference"
)

type decoder func(item Item) (store.Entry, error)

// Schema maps category tags to decoders for their payload types.
type Schema[K store.Category] struct {
	config     Config
	decoders   map[K]decoder
	categories []K
}

// Identity is what a schema can read from an item without decoding its payload.
type Identity[K store.Category] struct {
	Category  K
	ID        string
	Reference string
}

// New creates a Schema with no registered categories.
func New[K store.Category](config Config) *Schema[K] {
	config.validate()
	return &Schema[K]{
		config:   config,
		decoders: make(map[K]decoder),
	}
}

// Register binds category to payload type T. Items of that category are
// decoded into a *T with attributevalue.UnmarshalMap after the configured id
// and reference attributes are renamed to PayloadIDKey and
// PayloadReferenceKey. Registering a category twice replaces its payload type.
func Register[T any, PT interface {
	*T
	store.Entry
}, K store.Category](s *Schema[K], category K) {
	if _, ok := s.decoders[category]; !ok {
		s.categories = append(s.categories, category)
	}
	s.decoders[category] = func(item Item) (store.Entry, error) {
		var v T
		if err := attributevalue.UnmarshalMap(s.toPayload(item), &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", category, err)
		}
		return PT(&v), nil
	}
}

// Config returns the attribute names the schema reads.
func (s *Schema[K]) Config() Config {
	return s.config
}

// Categories returns the registered categories in registration order.
func (s *Schema[K]) Categories() []K {
	return append([]K(nil), s.categories...)
}

// Has reports whether category has a registered payload type.
func (s *Schema[K]) Has(category K) bool {
	_, ok := s.decoders[category]
	return ok
}

// Identity reads the category, id, and reference attributes of item.
func (s *Schema[K]) Identity(item Item) (Identity[K], error) {
	category := stringAttr(item, s.config.CategoryAttr)
	if category == "" {
		return Identity[K]{}, fmt.Errorf("%w: %s", ErrMissingAttribute, s.config.CategoryAttr)
	}
	id := stringAttr(item, s.config.IDAttr)
	if id == "" {
		return Identity[K]{}, fmt.Errorf("%w: %s", ErrMissingAttribute, s.config.IDAttr)
	}
	ref := stringAttr(item, s.config.ReferenceAttr)
	if ref == "" {
		return Identity[K]{}, fmt.Errorf("%w: %s", ErrMissingAttribute, s.config.ReferenceAttr)
	}
	return Identity[K]{Category: K(category), ID: id, Reference: ref}, nil
}

// Decode converts item into the entry type registered for its category.
func (s *Schema[K]) Decode(item Item) (K, store.Entry, error) {
	category := K(stringAttr(item, s.config.CategoryAttr))
	if category == "" {
		return category, nil, fmt.Errorf("%w: %s", ErrMissingAttribute, s.config.CategoryAttr)
	}
	decode, ok := s.decoders[category]
	if !ok {
		return category, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	entry, err := decode(item)
	if err != nil {
		return category, nil, err
	}
	if entry.ID() == "" {
		return category, nil, fmt.Errorf("%w: %s has no id", ErrMissingAttribute, category)
	}
	if entry.Reference() == "" {
		return category, nil, fmt.Errorf("%w: %s %q has no reference", ErrMissingAttribute, category, entry.ID())
	}
	return category, entry, nil
}

// Encode converts entry into an item tagged with category, the inverse of
// Decode. The id and reference are written under the configured attribute
// names, even for payloads that derive them from other fields.
func (s *Schema[K]) Encode(category K, entry store.Entry) (Item, error) {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %q: %w", category, entry.ID(), err)
	}
	delete(item, PayloadIDKey)
	delete(item, PayloadReferenceKey)
	item[s.config.CategoryAttr] = &types.AttributeValueMemberS{Value: string(category)}
	item[s.config.IDAttr] = &types.AttributeValueMemberS{Value: entry.ID()}
	item[s.config.ReferenceAttr] = &types.AttributeValueMemberS{Value: entry.Reference()}
	return item, nil
}

// toPayload renames the configured id and reference attributes to the names
// payload types are tagged with. item is not modified.
func (s *Schema[K]) toPayload(item Item) Item {
	if s.config.IDAttr == PayloadIDKey && s.config.ReferenceAttr == PayloadReferenceKey {
		return item
	}
	out := maps.Clone(item)
	delete(out, s.config.IDAttr)
	delete(out, s.config.ReferenceAttr)
	delete(out, PayloadIDKey)
	delete(out, PayloadReferenceKey)
	if v, ok := item[s.config.IDAttr]; ok {
		out[PayloadIDKey] = v
	}
	if v, ok := item[s.config.ReferenceAttr]; ok {
		out[PayloadReferenceKey] = v
	}
	return out
}

// stringAttr extracts a string attribute from an item.
func stringAttr(item Item, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
