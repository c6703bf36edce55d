package dynamo

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// batchGetLimit is DynamoDB's hard cap on keys per BatchGetItem call.
const batchGetLimit = 100

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// chunkKeys splits a list of single-attribute string keys into BatchGetItem
// sized chunks, preserving order.
func chunkKeys(name string, values []string) [][]map[string]types.AttributeValue {
	var chunks [][]map[string]types.AttributeValue
	for start := 0; start < len(values); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(values) {
			end = len(values)
		}
		chunk := make([]map[string]types.AttributeValue, 0, end-start)
		for _, v := range values[start:end] {
			chunk = append(chunk, strKey(name, v))
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
