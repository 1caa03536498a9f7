package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"permission-sync/internal/repository"
	"permission-sync/internal/repository/model"
)

var testRanks = []*model.Rank{
	{Id: "default", IsDefault: true, Permissions: []string{"chat"}},
	{Id: "vip", Priority: 10, Permissions: []string{"fly"}},
	{Id: "admin", Priority: 100, Permissions: []string{"*"}},
}

func TestRankCache_LoadAll(t *testing.T) {
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)

	c := NewRankCache(zap.NewNop().Sugar(), mockRepo)
	assert.Nil(t, c.Get("vip"))
	assert.Empty(t, c.All())
	assert.Nil(t, c.Default())

	mockRepo.EXPECT().GetAllRanks(gomock.Any()).Return(testRanks, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	assert.Equal(t, testRanks[1], c.Get("vip"))
	assert.Equal(t, testRanks[0], c.Default())
	assert.Equal(t, []string{"default", "vip", "admin"}, rankIds(c.All()))

	// A reload replaces the set wholesale
	mockRepo.EXPECT().GetAllRanks(gomock.Any()).Return([]*model.Rank{{Id: "vip"}}, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	assert.Nil(t, c.Get("admin"))
	assert.Nil(t, c.Default())
	assert.Equal(t, []string{"vip"}, rankIds(c.All()))
}

func TestRankCache_LoadAll_KeepsSnapshotOnError(t *testing.T) {
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)

	c := NewRankCache(zap.NewNop().Sugar(), mockRepo)

	mockRepo.EXPECT().GetAllRanks(gomock.Any()).Return(testRanks, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	storeErr := errors.New("connection refused")
	mockRepo.EXPECT().GetAllRanks(gomock.Any()).Return(nil, storeErr)
	err := c.LoadAll(context.Background())
	assert.ErrorIs(t, err, storeErr)

	assert.Equal(t, testRanks[2], c.Get("admin"))
	assert.Len(t, c.All(), 3)
}

func TestRankCache_All_ReturnsCopy(t *testing.T) {
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)

	c := NewRankCache(zap.NewNop().Sugar(), mockRepo)
	mockRepo.EXPECT().GetAllRanks(gomock.Any()).Return(testRanks, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	all := c.All()
	all[0] = nil
	assert.NotNil(t, c.All()[0])
}

func rankIds(ranks []*model.Rank) []string {
	ids := make([]string, len(ranks))
	for i, r := range ranks {
		ids[i] = r.Id
	}
	return ids
}
