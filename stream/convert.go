package stream

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/refstore/schema"
)

// ConvertImage converts a DynamoDB stream image to an item the schema can decode.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) schema.Item {
	result := make(schema.Item, len(image))
	for k, v := range image {
		if av := ConvertAttribute(v); av != nil {
			result[k] = av
		}
	}
	return result
}

// ConvertAttribute converts a single stream attribute value. It returns nil
// for values whose data type is not recognized.
func ConvertAttribute(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			if av := ConvertAttribute(item); av != nil {
				list = append(list, av)
			}
		}
		return &types.AttributeValueMemberL{Value: list}
	case events.DataTypeMap:
		return &types.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	}
	return nil
}
