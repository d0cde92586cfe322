package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/emre/scolaris/internal/app/controllers"
	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	schoolController *controllers.SchoolController,
	admissionController *controllers.AdmissionController,
	studentController *controllers.StudentController,
	guardianController *controllers.GuardianController,
	attendanceController *controllers.AttendanceController,
	behaviorController *controllers.BehaviorController,
	invoiceController *controllers.InvoiceController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// Families submit applications without an account
	v1.POST("/schools/:schoolId/admissions", admissionController.SubmitAdmission)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.GetProfile)

		authAdmin := authenticated.Group("")
		authAdmin.Use(authMiddleware.AdminRequired())
		{
			authAdmin.POST("/auth/register", authController.Register)
			authAdmin.POST("/schools", schoolController.CreateSchool)
			authAdmin.GET("/schools", schoolController.ListSchools)
		}

		// Everything below is scoped to the token's school
		school := authenticated.Group("/schools/:schoolId")
		school.Use(authMiddleware.SchoolScoped())
		{
			school.GET("", schoolController.GetSchool)

			schoolAdmin := school.Group("")
			schoolAdmin.Use(authMiddleware.AdminRequired())
			{
				schoolAdmin.PUT("", schoolController.UpdateSchool)
				schoolAdmin.DELETE("/admissions/:id", admissionController.DeleteAdmission)
			}

			admissions := school.Group("/admissions")
			{
				admissions.GET("", admissionController.ListAdmissions)
				admissions.GET("/:id", admissionController.GetAdmission)
				admissions.POST("/:id/documents", admissionController.AddDocument)
				admissions.POST("/:id/assessment", admissionController.RecordAssessment)

				// Status moves and conversion carry their own permissions
				admissions.POST("/:id/transition",
					authMiddleware.PermissionRequired(models.PermAdmissionsDecide),
					admissionController.TransitionAdmission)
				admissions.POST("/:id/convert",
					authMiddleware.PermissionRequired(models.PermAdmissionsConvert),
					admissionController.ConvertAdmission)
			}

			students := school.Group("/students")
			{
				students.GET("", studentController.ListStudents)
				students.GET("/:id", studentController.GetStudent)
				students.PUT("/:id", studentController.UpdateStudent)
				students.PUT("/:id/status", studentController.UpdateStudentStatus)

				students.POST("/:id/attendance", attendanceController.RecordAttendance)
				students.GET("/:id/attendance", attendanceController.ListAttendance)

				students.POST("/:id/behavior-notes", behaviorController.CreateBehaviorNote)
				students.GET("/:id/behavior-notes", behaviorController.ListBehaviorNotes)
				students.DELETE("/:id/behavior-notes/:noteId",
					authMiddleware.AdminRequired(),
					behaviorController.DeleteBehaviorNote)
			}

			guardians := school.Group("/guardians")
			{
				guardians.GET("", guardianController.ListGuardians)
				guardians.GET("/:id", guardianController.GetGuardian)
				guardians.PUT("/:id", guardianController.UpdateGuardian)
			}

			invoices := school.Group("/invoices")
			{
				invoices.POST("", invoiceController.CreateInvoice)
				invoices.GET("", invoiceController.ListInvoices)
				invoices.GET("/:id", invoiceController.GetInvoice)
				invoices.POST("/:id/issue", invoiceController.IssueInvoice)
				invoices.POST("/:id/void", invoiceController.VoidInvoice)
				invoices.POST("/:id/payments", invoiceController.RecordPayment)
				invoices.GET("/:id/payments", invoiceController.ListPayments)
			}
		}
	}
}
