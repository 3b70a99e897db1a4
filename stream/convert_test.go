package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestConvertAttribute_Scalars(t *testing.T) {
	if v, ok := ConvertAttribute(events.NewStringAttribute("日本語テスト")).(*types.AttributeValueMemberS); !ok || v.Value != "日本語テスト" {
		t.Error("expected string to convert")
	}
	if v, ok := ConvertAttribute(events.NewNumberAttribute("-100")).(*types.AttributeValueMemberN); !ok || v.Value != "-100" {
		t.Error("expected number to convert")
	}
	if v, ok := ConvertAttribute(events.NewBinaryAttribute([]byte{1, 2})).(*types.AttributeValueMemberB); !ok || len(v.Value) != 2 {
		t.Error("expected binary to convert")
	}
	if v, ok := ConvertAttribute(events.NewBooleanAttribute(true)).(*types.AttributeValueMemberBOOL); !ok || !v.Value {
		t.Error("expected boolean to convert")
	}
	if _, ok := ConvertAttribute(events.NewNullAttribute()).(*types.AttributeValueMemberNULL); !ok {
		t.Error("expected null to convert")
	}
}

func TestConvertAttribute_Sets(t *testing.T) {
	if v, ok := ConvertAttribute(events.NewStringSetAttribute([]string{"a", "b"})).(*types.AttributeValueMemberSS); !ok || len(v.Value) != 2 {
		t.Error("expected string set to convert")
	}
	if v, ok := ConvertAttribute(events.NewNumberSetAttribute([]string{"1"})).(*types.AttributeValueMemberNS); !ok || v.Value[0] != "1" {
		t.Error("expected number set to convert")
	}
	if v, ok := ConvertAttribute(events.NewBinarySetAttribute([][]byte{{1}})).(*types.AttributeValueMemberBS); !ok || len(v.Value) != 1 {
		t.Error("expected binary set to convert")
	}
}

func TestConvertImage_Nested(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"exports": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("start()"),
			events.NewStringAttribute("stop()"),
		}),
		"meta": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"lang": events.NewStringAttribute("go"),
		}),
	}

	item := ConvertImage(image)

	list, ok := item["exports"].(*types.AttributeValueMemberL)
	if !ok || len(list.Value) != 2 {
		t.Fatalf("expected list of 2, got %#v", item["exports"])
	}
	if s, ok := list.Value[1].(*types.AttributeValueMemberS); !ok || s.Value != "stop()" {
		t.Error("expected list order to be kept")
	}
	m, ok := item["meta"].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected map, got %#v", item["meta"])
	}
	if s, ok := m.Value["lang"].(*types.AttributeValueMemberS); !ok || s.Value != "go" {
		t.Error("expected nested string to convert")
	}
}

func TestConvertImage_Empty(t *testing.T) {
	if item := ConvertImage(nil); item == nil || len(item) != 0 {
		t.Errorf("expected empty non-nil item, got %#v", item)
	}
}
