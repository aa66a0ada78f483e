package utils_test

import (
	"testing"

	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidateOrderItems(t *testing.T) {
	assert.NoError(t, utils.ValidateOrderItems([]domain.OrderItemRequest{
		{ProductID: "p1", Quantity: 1},
	}))

	assert.Error(t, utils.ValidateOrderItems(nil))
	assert.Error(t, utils.ValidateOrderItems([]domain.OrderItemRequest{
		{ProductID: "", Quantity: 1},
	}))
	assert.Error(t, utils.ValidateOrderItems([]domain.OrderItemRequest{
		{ProductID: "p1", Quantity: 0},
	}))
	assert.Error(t, utils.ValidateOrderItems([]domain.OrderItemRequest{
		{ProductID: "p1", Quantity: -2},
	}))
}

func TestValidatePagination(t *testing.T) {
	filter, err := utils.ValidatePagination(0, 0, "")
	assert.NoError(t, err)
	assert.Equal(t, utils.DefaultPage, filter.Page)
	assert.Equal(t, utils.DefaultLimit, filter.Limit)
	assert.Nil(t, filter.Status)

	filter, err = utils.ValidatePagination(3, 10, "PAID")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), filter.Page)
	assert.Equal(t, uint64(10), filter.Limit)
	assert.Equal(t, domain.OrderStatusPaid, *filter.Status)

	_, err = utils.ValidatePagination(1, 10, "SHIPPED")
	assert.Error(t, err)
}

func TestValidateStatus(t *testing.T) {
	status, err := utils.ValidateStatus("DELIVERED")
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, status)

	_, err = utils.ValidateStatus("paid")
	assert.Error(t, err)

	var svcErr *domain.ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
}
