package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"rag-chatbot/internal/domain"
)

const (
	turnTTL = 30 * 24 * time.Hour // 30-day TTL

	// timestampLayout is fixed-width so sort keys order lexicographically.
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// dynamodbAPI is the minimal DynamoDB interface required by the clients in
// this package. Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps the conversation table. Items are keyed by session_id (PK) and
// timestamp (SK); each item is one immutable Turn.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// roleOrdinal keeps the user turn ahead of the assistant turn of the same
// exchange when both share a request timestamp.
func roleOrdinal(role string) string {
	if role == domain.RoleUser {
		return "1"
	}
	return "2"
}

// turnSK returns the sort key for a turn: request time, ordinal, role.
func turnSK(ts time.Time, role string) string {
	return ts.UTC().Format(timestampLayout) + "#" + roleOrdinal(role) + "#" + role
}

// NewTurn constructs a Turn stamped with ts, expiring 30 days after ts.
func NewTurn(sessionID, userID, role, content string, ts time.Time) domain.Turn {
	return domain.Turn{
		SessionID: sessionID,
		Timestamp: turnSK(ts, role),
		UserID:    userID,
		Role:      role,
		Content:   content,
		TTL:       ts.Add(turnTTL).Unix(),
	}
}

// FetchHistory returns up to limit turns for the session, most recent first.
func (c *Client) FetchHistory(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("session_id = :session_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":session_id": &types.AttributeValueMemberS{Value: sessionID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: FetchHistory query: %w", err)
	}

	var turns []domain.Turn
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &turns); err != nil {
		return nil, fmt.Errorf("repository: FetchHistory unmarshal: %w", err)
	}
	for i := range turns {
		if turns[i].Role == "" {
			turns[i].Role = domain.RoleUser
		}
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[:limit]
	}
	return turns, nil
}

// AppendTurn writes a single turn. Turns are never overwritten.
func (c *Client) AppendTurn(ctx context.Context, turn domain.Turn) error {
	if turn.SessionID == "" || turn.Timestamp == "" {
		return errors.New("repository: AppendTurn: session_id and timestamp are required")
	}
	item, err := attributevalue.MarshalMap(turn)
	if err != nil {
		return fmt.Errorf("repository: AppendTurn marshal: %w", err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(session_id) AND attribute_not_exists(#ts)"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
	})
	if err != nil {
		return fmt.Errorf("repository: AppendTurn: %w", err)
	}
	return nil
}
