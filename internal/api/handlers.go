package api

import (
	"fmt"
	"net/http"
	"strconv"

	"smartkitchen/internal/inventory"
	"smartkitchen/internal/models"
	"smartkitchen/internal/recommend"
	"smartkitchen/internal/sales"
	"smartkitchen/internal/spoilage"

	"github.com/gin-gonic/gin"
)

const defaultReportMonths = 3

func errInvalidParam(name, value string) error {
	return fmt.Errorf("invalid %s: %q", name, value)
}

// Inventory handlers

func (d *DashboardAPI) GetInventory(c *gin.Context) {
	q, err := parseInventoryQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories, qualities := d.Service.Filters()
	c.JSON(http.StatusOK, gin.H{
		"result":     d.Service.Browse(q),
		"categories": categories,
		"qualities":  qualities,
		"page_sizes": inventory.PageSizes,
	})
}

func parseInventoryQuery(c *gin.Context) (inventory.Query, error) {
	var q inventory.Query
	var err error

	q.Filter.Search = c.Query("search")
	q.Filter.DateStart = c.Query("start")
	q.Filter.DateEnd = c.Query("end")
	q.Filter.Categories = c.QueryArray("category")
	q.Filter.Qualities = c.QueryArray("quality")
	if q.Filter.Stock, err = inventory.ParseStockBucket(c.Query("stock")); err != nil {
		return q, err
	}
	if q.Sort.Key, err = inventory.ParseSortKey(c.Query("sort")); err != nil {
		return q, err
	}
	if q.Sort.Direction, err = inventory.ParseDirection(c.Query("dir")); err != nil {
		return q, err
	}

	if raw := c.Query("page"); raw != "" {
		if q.PageIndex, err = strconv.Atoi(raw); err != nil || q.PageIndex < 0 {
			return q, errInvalidParam("page", raw)
		}
	}
	q.PageSize = inventory.DefaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || !inventory.ValidPageSize(size) {
			return q, errInvalidParam("page_size", raw)
		}
		q.PageSize = size
	}
	return q, nil
}

func (d *DashboardAPI) GetExpiring(c *gin.Context) {
	days := spoilage.NearExpiryDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("days", raw).Error()})
			return
		}
		days = v
	}

	c.JSON(http.StatusOK, gin.H{
		"items":         d.Service.Expiring(days),
		"expiring_soon": d.Service.Summary().ExpiringSoon,
	})
}

func (d *DashboardAPI) GetTrends(c *gin.Context) {
	c.JSON(http.StatusOK, d.Service.Trends())
}

func (d *DashboardAPI) GetAlerts(c *gin.Context) {
	report := d.Service.Alerts()
	c.JSON(http.StatusOK, gin.H{
		"report":             report,
		"has_quality_issues": report.HasQualityIssues(),
		"thresholds":         d.Service.Thresholds(),
	})
}

func (d *DashboardAPI) GetRestockPlan(c *gin.Context) {
	plan, err := d.Service.RestockPlan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Menu handlers

func (d *DashboardAPI) GetMenu(c *gin.Context) {
	dishes, categories := d.Service.Menu(c.Query("search"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"dishes":     dishes,
		"groups":     recommend.GroupByCategory(dishes),
		"categories": categories,
	})
}

func (d *DashboardAPI) GetRecommendations(c *gin.Context) {
	selected := recommend.NewSelection(c.QueryArray("ingredient")...)
	c.JSON(http.StatusOK, gin.H{
		"recommendations": d.Service.Recommendations(selected),
		"use_soon":        d.Service.UseSoon(),
	})
}

// Sales handlers

func (d *DashboardAPI) GetSales(c *gin.Context) {
	period, err := sales.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d.Service.Sales(period))
}

func (d *DashboardAPI) GetSalesReport(c *gin.Context) {
	months := defaultReportMonths
	if raw := c.Query("months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("months", raw).Error()})
			return
		}
		months = v
	}

	out, err := d.Service.SalesCSV(c.Request.Context(), months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=sales_report.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// Order handlers

func (d *DashboardAPI) CreateOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := order.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conf, err := d.Service.PlaceOrder(c.Request.Context(), order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "message": conf.Message, "status": models.OrderStatusPlaced})
}

// Scanner handlers

func (d *DashboardAPI) Scan(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := d.Service.Scan(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":   result.Filename,
		"counts":     result.Counts,
		"vegetables": result.Vegetables(),
		"total":      result.Total(),
	})
}

func (d *DashboardAPI) GetScanImage(c *gin.Context) {
	data, contentType, err := d.Service.ScanImage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// Status handlers

func (d *DashboardAPI) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	err := d.Service.Refresh(ctx)
	if salesErr := d.Service.RefreshSales(ctx); err == nil {
		err = salesErr
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Service.Status())
}

func (d *DashboardAPI) GetStatus(c *gin.Context) {
	status := d.Service.Status()
	status.Monitor["websocket_clients"] = d.Hub.Count()
	c.JSON(http.StatusOK, status)
}
