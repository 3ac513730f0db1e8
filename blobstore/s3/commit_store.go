package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/prodsearch/blobstore"
)

// DDBClient is the subset of the DynamoDB API used by CommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CommitStore is a Store whose snapshot pointer lives in DynamoDB.
//
// Table schema:
//   - Partition key: base_uri (string), the bucket and prefix
//   - Sort key: version (number), the snapshot sequence
type CommitStore struct {
	*Store
	ddb       DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.Committer = (*CommitStore)(nil)

// NewCommitStore wraps store. baseURI should be "s3://bucket/prefix".
func NewCommitStore(store *Store, ddb DDBClient, tableName, baseURI string) *CommitStore {
	return &CommitStore{
		Store:     store,
		ddb:       ddb,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// DialCommitStore creates a DynamoDB client from the default AWS configuration
// and wraps store.
func DialCommitStore(ctx context.Context, store *Store, tableName, region string) (*CommitStore, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	baseURI := "s3://" + store.bucket + "/" + store.prefix
	return NewCommitStore(store, dynamodb.NewFromConfig(cfg), tableName, baseURI), nil
}

// Commit records name as snapshot seq. It fails with blobstore.ErrConflict if
// seq already exists.
func (s *CommitStore) Commit(ctx context.Context, seq uint64, name string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(seq, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: version %d", blobstore.ErrConflict, seq)
		}
		return fmt.Errorf("s3: commit version %d: %w", seq, err)
	}
	return nil
}

// Latest returns the highest committed version.
func (s *CommitStore) Latest(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commits: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", blobstore.ErrNotFound
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: invalid version attribute")
	}
	pathAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: invalid manifest_path attribute")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: parse version: %w", err)
	}
	return version, pathAttr.Value, nil
}
