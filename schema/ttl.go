package schema

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IsExpired reports whether item carries a TTL that is at or before now.
func (s *Schema[K]) IsExpired(item Item) bool {
	return isExpiredAt(item, s.config.TTLAttr, time.Now())
}

func isExpiredAt(item Item, attr string, now time.Time) bool {
	ttlAttr, exists := item[attr]
	if !exists {
		return false // No TTL = active
	}
	ttlNum, ok := ttlAttr.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(ttlNum.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= now.Unix()
}

// TTLFilter is a DynamoDB filter expression excluding expired items.
type TTLFilter struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// ActiveFilter returns a filter keeping items with no TTL or a TTL after now.
// Use it on scans and queries so expired items never leave the table.
func (s *Schema[K]) ActiveFilter(now time.Time) TTLFilter {
	return TTLFilter{
		Expression: "attribute_not_exists(#ttl) OR #ttl > :now",
		Names:      map[string]string{"#ttl": s.config.TTLAttr},
		Values: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	}
}
