package routes

import (
	"creditcoach/handlers"
	"creditcoach/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking wizard endpoints. Submitting
// reads an optional bearer token; the wizard itself reports a missing one.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.GET("/services", hb.GetServicesHandler)

		wizard := bookingGroup.Group("/wizard")
		wizard.GET("", hb.GetWizardHandler)
		wizard.DELETE("", hb.DiscardWizardHandler)
		wizard.POST("/service", hb.ChooseServiceHandler)  // step 1
		wizard.POST("/date", hb.SelectDateHandler)        // step 2
		wizard.POST("/slots/retry", hb.RetrySlotsHandler) // step 2
		wizard.POST("/time", hb.SelectTimeHandler)        // step 2
		wizard.PUT("/notes", hb.SetNotesHandler)
		wizard.POST("/back", hb.BackHandler)
		wizard.POST("/dismiss-error", hb.DismissErrorHandler)
		wizard.POST("/submit", middleware.BearerAuth(hb.Verifier, true), hb.SubmitBookingHandler)
	}
}
