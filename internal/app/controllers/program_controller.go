package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/services"
	"github.com/admitflow/admitflow/internal/middleware"
)

// ProgramController exposes the read-only program catalog
type ProgramController struct {
	programs services.ProgramService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programs services.ProgramService) *ProgramController {
	return &ProgramController{programs: programs}
}

func toProgramResponse(p *models.Program) dto.ProgramResponse {
	return dto.ProgramResponse{
		ID:             p.ID,
		Name:           p.Name,
		UniversityName: p.UniversityName,
		DegreeLevel:    p.DegreeLevel,
		Country:        p.Country,
		TuitionFee:     p.TuitionFee,
		Currency:       p.Currency,
	}
}

// List handles listing the program catalog
// @Summary List programs
// @Description Returns the program catalog, optionally filtered by degree level
// @Tags programs
// @Produce json
// @Param degreeLevel query string false "Filter by degree level" Enums(BACHELOR, MASTER, PHD, DIPLOMA)
// @Success 200 {object} dto.APIResponse{data=[]dto.ProgramResponse}
// @Security Bearer
// @Router /programs [get]
func (c *ProgramController) List(ctx *gin.Context) {
	var degreeLevel *models.DegreeLevel
	if level := ctx.Query("degreeLevel"); level != "" {
		dl := models.DegreeLevel(level)
		degreeLevel = &dl
	}

	programs, err := c.programs.List(ctx, degreeLevel)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		responses = append(responses, toProgramResponse(&programs[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// Get handles retrieving one program
// @Summary Get program
// @Description Returns one catalog program
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProgramResponse}
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Security Bearer
// @Router /programs/{id} [get]
func (c *ProgramController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	program, err := c.programs.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(toProgramResponse(program)))
}
