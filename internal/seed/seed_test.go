package seed

import (
	"context"
	"testing"

	haccpdomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureReferenceDataIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&haccpdomain.CCP{}, &wastedomain.WasteType{}, &labtestdomain.LabTestType{}))
	ctx := context.Background()

	created, err := EnsureReferenceData(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, len(defaultCCPs)+len(defaultWasteTypes)+len(defaultLabTestTypes), created)

	var ccp haccpdomain.CCP
	require.NoError(t, conn.Where("code = ?", "CCP-1").First(&ccp).Error)
	assert.True(t, ccp.Active)

	created, err = EnsureReferenceData(ctx, conn)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, conn.Model(&wastedomain.WasteType{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultWasteTypes)), count)
}
