package handlers

import (
	"net/http"
	"strconv"

	"bms_telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      List batteries
// @Description  Latest state of every battery visible to the caller
// @Tags         batteries
// @Produce      json
// @Success      200  {array}   models.BatterySnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries [get]
// @Security     BearerAuth
func (h *Handler) listBatteries(c *gin.Context) {
	out, err := h.services.ListCurrentStates(c.Request.Context(), principal(c))
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "batteries_list_failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Get battery
// @Tags         batteries
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  models.BatteryDetails
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries/{id} [get]
// @Security     BearerAuth
func (h *Handler) getBattery(c *gin.Context) {
	id := c.Param("id")
	out, err := h.services.GetBattery(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "battery_get_failed", "device_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Historical series
// @Description  Readings of the trailing window, oldest first. Temperature rows carry temp1..tempN.
// @Tags         batteries
// @Produce      json
// @Param        id      path   string  true   "Device id"
// @Param        metric  query  string  true   "Metric"  Enums(voltage,temperature,stateOfCharge,health)
// @Param        hours   query  int     false  "Window in hours (1-720, default 24)"
// @Success      200  {array}   map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries/{id}/historical [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	id := c.Param("id")
	metric := c.Query("metric")

	var hours int
	if qs := c.Query("hours"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidHours})
			return
		}
		hours = n
	}

	out, err := h.services.GetHistory(c.Request.Context(), principal(c), id, metric, hours)
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "battery_history_failed", "device_id", id, "metric", metric)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Device event log
// @Description  Newest alarms and faults of one device
// @Tags         batteries
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {array}   models.LogEntry
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries/{id}/logs [get]
// @Security     BearerAuth
func (h *Handler) getDeviceLog(c *gin.Context) {
	id := c.Param("id")
	out, err := h.services.GetDeviceLog(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "battery_logs_failed", "device_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Device route
// @Tags         batteries
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {array}   models.RoutePoint
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries/{id}/route [get]
// @Security     BearerAuth
func (h *Handler) getRoute(c *gin.Context) {
	id := c.Param("id")
	out, err := h.services.GetRoute(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "battery_route_failed", "device_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Export readings
// @Description  Every reading of the device as CSV, newest first
// @Tags         batteries
// @Produce      text/csv
// @Param        id   path      string  true  "Device id"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/batteries/{id}/export [get]
// @Security     BearerAuth
func (h *Handler) exportReadings(c *gin.Context) {
	id := c.Param("id")
	out, err := h.services.ExportReadings(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondServiceError(c, err, errNoExportData, "battery_export_failed", "device_id", id)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.ExportFilename(id)+`"`)
	c.Data(http.StatusOK, "text/csv", out)
}
