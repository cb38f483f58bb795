package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/owner_shop/internal/models"
)

// Indexer mirrors products into an index keyed by product id. Documents
// carry userId so readers of the index can apply the same owner filter.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{ES: client, Index: index}
}

func (i *Indexer) IndexProduct(ctx context.Context, prod *models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(prod); err != nil {
		return fmt.Errorf("es: encode product: %w", err)
	}

	res, err := i.ES.Index(
		i.Index,
		&buf,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(prod.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index product returned %s: %s", res.Status(), body)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (i *Indexer) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := i.ES.Delete(i.Index, id.String(), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete product: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: delete product returned %s: %s", res.Status(), body)
	}
	return nil
}
