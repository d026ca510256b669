package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"
)

// NewOpenSearchAPI builds a SigV4-signed OpenSearch client for endpoint.
// service is "aoss" for OpenSearch Serverless and "es" for managed domains.
func NewOpenSearchAPI(endpoint string, awsCfg aws.Config, service string) (*OpenSearchAPI, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("search: endpoint must not be empty")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if service == "" {
		service = "aoss"
	}
	signer, err := requestsigner.NewSignerWithService(awsCfg, service)
	if err != nil {
		return nil, fmt.Errorf("search: create signer: %w", err)
	}
	return newOpenSearchAPI(opensearch.Config{
		Addresses: []string{endpoint},
		Signer:    signer,
	})
}

func newOpenSearchAPI(cfg opensearch.Config) (*OpenSearchAPI, error) {
	client, err := opensearchapi.NewClient(opensearchapi.Config{Client: cfg})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}
	return &OpenSearchAPI{client: client}, nil
}

// isErrorType reports whether err is an OpenSearch error response of type
// typ. The typed StructError is checked first; older error shapes only carry
// the raw body, so the text is searched as a fallback.
func isErrorType(err error, typ string) bool {
	if err == nil {
		return false
	}
	var se *opensearch.StructError
	if errors.As(err, &se) && se.Err.Type == typ {
		return true
	}
	return strings.Contains(err.Error(), typ)
}

// OpenSearchAPI adapts opensearchapi.Client to searchAPI.
type OpenSearchAPI struct {
	client *opensearchapi.Client
}

var _ searchAPI = (*OpenSearchAPI)(nil)

func (o *OpenSearchAPI) IndexExists(ctx context.Context, index string) (bool, error) {
	resp, err := o.client.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{index}})
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (o *OpenSearchAPI) CreateIndex(ctx context.Context, index string, body []byte) error {
	_, err := o.client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: index,
		Body:  bytes.NewReader(body),
	})
	if isErrorType(err, "resource_already_exists_exception") {
		return nil
	}
	return err
}

func (o *OpenSearchAPI) IndexDocument(ctx context.Context, index, id string, body []byte) error {
	_, err := o.client.Index(ctx, opensearchapi.IndexReq{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	})
	return err
}

func (o *OpenSearchAPI) Search(ctx context.Context, index string, body []byte) ([]json.RawMessage, error) {
	resp, err := o.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		// the index is created on first upload; until then nothing matches
		if isErrorType(err, "index_not_found_exception") {
			return []json.RawMessage{}, nil
		}
		return nil, err
	}
	sources := make([]json.RawMessage, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		sources = append(sources, h.Source)
	}
	return sources, nil
}
