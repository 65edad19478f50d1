package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recon-cli/internal/model"
)

func TestBuildTable(t *testing.T) {
	sales := []model.SalesAggregate{
		{Material: "C", TotalQty: model.Float(10), TotalSales: 100, Unit: "AD"},
		{Material: "A", TotalQty: model.Float(2), TotalSales: 20},
		{Material: "E"}, // no quantity, no value
	}
	purchases := []model.PurchaseAggregate{
		{Material: "C", TotalQty: model.Float(4), TotalOrderValue: 40, Unit: "AD"},
		{Material: "A", TotalQty: model.Float(5), TotalOrderValue: 10},
		{Material: "B", TotalQty: model.Float(1), TotalOrderValue: 5},
	}

	table, err := BuildTable(sales, purchases)
	require.NoError(t, err)
	require.Len(t, table.Records, 4)

	byMaterial := map[string]model.MatchRecord{}
	var order []string
	for _, r := range table.Records {
		byMaterial[r.Material()] = r
		order = append(order, r.Material())
	}
	assert.Equal(t, []string{"A", "B", "C", "E"}, order)

	assert.Equal(t, model.MatchBoth, byMaterial["A"].MatchType)
	assert.False(t, byMaterial["A"].StockoutRisk)
	assert.Equal(t, model.MatchPurchaseOnly, byMaterial["B"].MatchType)
	assert.Empty(t, byMaterial["B"].SalesMaterial)
	assert.Equal(t, "B", byMaterial["B"].PurchaseMaterial)
	assert.Equal(t, model.MatchBoth, byMaterial["C"].MatchType)
	assert.True(t, byMaterial["C"].StockoutRisk)
	assert.Equal(t, model.MatchNone, byMaterial["E"].MatchType)

	sum := table.Summary()
	assert.Equal(t, model.MatchSummary{
		TotalProducts: 4,
		Both:          2,
		SalesOnly:     0,
		PurchaseOnly:  1,
		None:          1,
		StockoutRisk:  1,
	}, sum)
}

func TestBuildTable_SalesOnly(t *testing.T) {
	sales := []model.SalesAggregate{{Material: "S", TotalQty: model.Float(3), TotalSales: 9}}
	table, err := BuildTable(sales, nil)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, model.MatchSalesOnly, table.Records[0].MatchType)
	assert.Equal(t, 1, table.Summary().SalesOnly)
}

func TestBuildTable_ConfigurationError(t *testing.T) {
	_, err := BuildTable(nil, []model.PurchaseAggregate{{Material: ""}})
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))
}

func TestBuildTable_Empty(t *testing.T) {
	table, err := BuildTable(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Records)
	assert.Equal(t, model.MatchSummary{}, table.Summary())
}
