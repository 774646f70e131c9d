package dynamo

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// numKey builds a DynamoDB primary key map with a single numeric attribute.
func numKey(name string, value int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)},
	}
}

// projection builds a ProjectionExpression over attrs using placeholder names,
// so attribute names never collide with DynamoDB reserved words.
func projection(attrs ...string) (expr string, names map[string]string) {
	names = make(map[string]string, len(attrs))
	for i, a := range attrs {
		ph := "#p" + strconv.Itoa(i)
		names[ph] = a
		if i > 0 {
			expr += ", "
		}
		expr += ph
	}
	return expr, names
}
