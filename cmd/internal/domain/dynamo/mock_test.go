package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockDynamo struct {
	getOutput   *dynamodb.GetItemOutput
	queryOutput map[string]*dynamodb.QueryOutput
	scanOutput  *dynamodb.ScanOutput
	describe    []error
	err         error

	getInputs      []*dynamodb.GetItemInput
	putInputs      []*dynamodb.PutItemInput
	updateInputs   []*dynamodb.UpdateItemInput
	queryInputs    []*dynamodb.QueryInput
	transactInputs []*dynamodb.TransactWriteItemsInput
	createInputs   []*dynamodb.CreateTableInput
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.getInputs = append(m.getInputs, in)
	if m.err != nil {
		return nil, m.err
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	return &dynamodb.PutItemOutput{}, m.err
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	return &dynamodb.UpdateItemOutput{}, m.err
}

func (m *mockDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queryInputs = append(m.queryInputs, in)
	if m.err != nil {
		return nil, m.err
	}
	if out, ok := m.queryOutput[*in.IndexName]; ok {
		return out, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.scanOutput == nil {
		return &dynamodb.ScanOutput{}, nil
	}
	return m.scanOutput, nil
}

func (m *mockDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.transactInputs = append(m.transactInputs, in)
	return &dynamodb.TransactWriteItemsOutput{}, m.err
}

func (m *mockDynamo) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if len(m.describe) > 0 {
		err := m.describe[0]
		m.describe = m.describe[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil
}

func (m *mockDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.createInputs = append(m.createInputs, in)
	return &dynamodb.CreateTableOutput{}, m.err
}
