package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"walkcourse-editor/internal/application"
	"walkcourse-editor/internal/domain/model"
)

// CoursesHandler 散歩コースに関するHTTPハンドラー
type CoursesHandler struct {
	coursesService application.CoursesService
}

// NewCoursesHandler CoursesHandlerの新しいインスタンスを作成
func NewCoursesHandler(coursesService application.CoursesService) *CoursesHandler {
	return &CoursesHandler{
		coursesService: coursesService,
	}
}

// CreateCourse POST /courses - コースの作成
func (h *CoursesHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	response, err := h.coursesService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create course: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetCoursesByBoundingBox GET /courses - 境界ボックス内のコース一覧を取得
func (h *CoursesHandler) GetCoursesByBoundingBox(c *gin.Context) {
	bbox := c.Query("bbox")
	if bbox == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "bbox parameter is required (format: min_lng,min_lat,max_lng,max_lat)",
		})
		return
	}

	coords := strings.Split(bbox, ",")
	if len(coords) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "bbox must contain 4 coordinates: min_lng,min_lat,max_lng,max_lat",
		})
		return
	}

	values := make([]float64, 4)
	names := []string{"min_lng", "min_lat", "max_lng", "max_lat"}
	for i, coord := range coords {
		value, err := strconv.ParseFloat(coord, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "Invalid " + names[i] + " value",
			})
			return
		}
		values[i] = value
	}

	courses, err := h.coursesService.GetCoursesByBoundingBox(c.Request.Context(), values[0], values[1], values[2], values[3])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get courses: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.GetCoursesResponse{Courses: courses})
}

// GetCourseDetail GET /courses/:id - コースの詳細を取得
func (h *CoursesHandler) GetCourseDetail(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "Course ID is required",
		})
		return
	}

	detail, err := h.coursesService.GetCourseDetail(c.Request.Context(), courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get course detail: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, detail)
}
