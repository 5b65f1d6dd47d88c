package companies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/companies"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/testutil/memstore"
)

func TestStatusUseCase_IsActive(t *testing.T) {
	store := memstore.New()
	store.AddCompany(entity.Company{ID: "activa", Name: "Acme", Status: entity.CompanyStatusActive})
	store.AddCompany(entity.Company{ID: "suspendida", Name: "Beta", Status: "suspended"})
	uc := companies.NewStatusUseCase(store)

	tests := []struct {
		name      string
		companyID string
		want      bool
	}{
		{"empresa activa", "activa", true},
		{"empresa suspendida", "suspendida", false},
		{"empresa inexistente", "otra", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.IsActive(context.Background(), tt.companyID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
