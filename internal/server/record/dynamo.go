package record

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoBackend.
type DynamoAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoBackend stores items in DynamoDB tables. Each looked-up field needs a
// global secondary index named IndexName(field) with that field as hash key.
type DynamoBackend struct {
	client DynamoAPI
}

func NewDynamoBackend(client DynamoAPI) *DynamoBackend {
	return &DynamoBackend{client: client}
}

func toDynamo(a Attribute) (types.AttributeValue, error) {
	switch a.Kind {
	case KindS:
		return &types.AttributeValueMemberS{Value: a.S}, nil
	case KindN:
		return &types.AttributeValueMemberN{Value: a.N}, nil
	case KindBOOL:
		return &types.AttributeValueMemberBOOL{Value: a.BOOL}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}
}

func fromDynamo(v types.AttributeValue) (Attribute, error) {
	switch t := v.(type) {
	case *types.AttributeValueMemberS:
		return String(t.Value), nil
	case *types.AttributeValueMemberN:
		return Attribute{Kind: KindN, N: t.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return Bool(t.Value), nil
	default:
		return Attribute{}, fmt.Errorf("%w: %T", ErrUnsupportedKind, v)
	}
}

func toDynamoItem(item Item) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(item))
	for k, a := range item {
		v, err := toDynamo(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func fromDynamoItem(in map[string]types.AttributeValue) (Item, error) {
	out := make(Item, len(in))
	for k, v := range in {
		a, err := fromDynamo(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out[k] = a
	}
	return out, nil
}

func (d *DynamoBackend) QueryIndex(ctx context.Context, t Table, field string, value Attribute) (Item, bool, error) {
	v, err := toDynamo(value)
	if err != nil {
		return nil, false, err
	}

	out, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(t.Name),
		IndexName:                 aws.String(IndexName(field)),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": v},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, false, err
	}
	if len(out.Items) == 0 {
		return nil, false, nil
	}

	item, err := fromDynamoItem(out.Items[0])
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

func (d *DynamoBackend) PutItem(ctx context.Context, t Table, item Item) error {
	av, err := toDynamoItem(item)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Name),
		Item:      av,
	})
	return err
}

// UpdateItem issues a single UpdateItem call with "SET ... REMOVE ...".
func (d *DynamoBackend) UpdateItem(ctx context.Context, t Table, key Attribute, set Item, remove []string) error {
	k, err := toDynamo(key)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(set)+len(remove))
	values := make(map[string]types.AttributeValue, len(set))

	var sets []string
	for i, name := range sortedNames(set) {
		v, err := toDynamo(set[name])
		if err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		n, p := "#s"+strconv.Itoa(i), ":s"+strconv.Itoa(i)
		names[n] = name
		values[p] = v
		sets = append(sets, n+" = "+p)
	}

	var removes []string
	for i, name := range remove {
		n := "#r" + strconv.Itoa(i)
		names[n] = name
		removes = append(removes, n)
	}

	var expr []string
	if len(sets) > 0 {
		expr = append(expr, "SET "+strings.Join(sets, ", "))
	}
	if len(removes) > 0 {
		expr = append(expr, "REMOVE "+strings.Join(removes, ", "))
	}

	in := &dynamodb.UpdateItemInput{
		TableName:                aws.String(t.Name),
		Key:                      map[string]types.AttributeValue{t.PrimaryKey: k},
		UpdateExpression:         aws.String(strings.Join(expr, " ")),
		ExpressionAttributeNames: names,
	}
	// DynamoDB rejects an empty ExpressionAttributeValues map.
	if len(values) > 0 {
		in.ExpressionAttributeValues = values
	}

	_, err = d.client.UpdateItem(ctx, in)
	return err
}
