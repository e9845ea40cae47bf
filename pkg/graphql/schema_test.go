package graphql

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) graphql.Schema {
	t.Helper()
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"theme": &graphql.Field{
				Type:    graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) { return "light", nil },
			},
		},
	})
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"toggleTheme": &graphql.Field{
				Type:    graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) { return "dark", nil },
			},
		},
	})
	schema, err := NewSchema(query, mutation)
	require.NoError(t, err)
	return schema
}

func TestHandlerPostAndGet(t *testing.T) {
	h := Handler(testSchema(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ theme }"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"theme":"light"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?query=%7B+theme+%7D", nil))
	assert.JSONEq(t, `{"data":{"theme":"light"}}`, rec.Body.String())
}

func TestHandlerRejectsBadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(testSchema(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRefusesMutationOverGet(t *testing.T) {
	h := Handler(testSchema(t))

	for _, q := range []string{
		"mutation+%7B+toggleTheme+%7D",
		"query+Q+%7B+theme+%7D+mutation+M+%7B+toggleTheme+%7D&operationName=M",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?query="+q, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, q)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.NotContains(t, rec.Body.String(), "dark")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"mutation { toggleTheme }"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"toggleTheme":"dark"}}`, rec.Body.String())
}
