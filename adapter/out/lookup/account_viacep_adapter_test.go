package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"account_server/core/port/out"
)

func newTestAdapter(handler http.HandlerFunc) (*ViaCEPAdapter, *httptest.Server) {
	server := httptest.NewServer(handler)
	adapter := NewViaCEPAdapter(&Config{
		BaseURL:  server.URL,
		CacheTTL: time.Minute,
	}, nil)
	return adapter, server
}

func TestLookup_Found(t *testing.T) {
	var gotPath string
	adapter, server := newTestAdapter(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"cep": "01001-000",
			"logradouro": "Praca da Se",
			"complemento": "lado impar",
			"bairro": "Se",
			"localidade": "Sao Paulo",
			"uf": "SP"
		}`))
	})
	defer server.Close()

	info, err := adapter.Lookup(context.Background(), "01001000")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if gotPath != "/ws/01001000/json/" {
		t.Errorf("request path = %q, want /ws/01001000/json/", gotPath)
	}
	if info.Zipcode != "01001000" {
		t.Errorf("zipcode = %q, want 01001000 (dash stripped)", info.Zipcode)
	}
	if info.Street != "Praca da Se" {
		t.Errorf("street = %q", info.Street)
	}
	if info.Neighborhood != "Se" {
		t.Errorf("neighborhood = %q", info.Neighborhood)
	}
	if info.City != "Sao Paulo" {
		t.Errorf("city = %q", info.City)
	}
	if info.State != "SP" {
		t.Errorf("state = %q", info.State)
	}
	if info.Complement != "lado impar" {
		t.Errorf("complement = %q", info.Complement)
	}
}

func TestLookup_UnknownZipcode(t *testing.T) {
	adapter, server := newTestAdapter(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro": true}`))
	})
	defer server.Close()

	_, err := adapter.Lookup(context.Background(), "99999999")
	if !errors.Is(err, out.ErrZipcodeNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrZipcodeNotFound", err)
	}
}

func TestLookup_MalformedZipcode(t *testing.T) {
	adapter, server := newTestAdapter(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	defer server.Close()

	_, err := adapter.Lookup(context.Background(), "abc")
	if !errors.Is(err, out.ErrZipcodeNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrZipcodeNotFound", err)
	}
}

func TestLookup_UpstreamFailure(t *testing.T) {
	adapter, server := newTestAdapter(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := adapter.Lookup(context.Background(), "01001000")
	if err == nil {
		t.Fatal("Lookup() expected an error")
	}
	if errors.Is(err, out.ErrZipcodeNotFound) {
		t.Fatal("upstream failure must not read as not-found")
	}
}

func TestLookup_EmptyCepTreatedAsNotFound(t *testing.T) {
	adapter, server := newTestAdapter(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	_, err := adapter.Lookup(context.Background(), "00000000")
	if !errors.Is(err, out.ErrZipcodeNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrZipcodeNotFound", err)
	}
}
