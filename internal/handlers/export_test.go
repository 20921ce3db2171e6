package handlers

// Route registrars exposed to the external handler tests.
var (
	RegisterBookRoutes         = registerBookRoutes
	RegisterLoanRoutes         = registerLoanRoutes
	RegisterFineRoutes         = registerFineRoutes
	RegisterVerificationRoutes = registerVerificationRoutes
	RegisterUserRoutes         = registerUserRoutes
	RegisterReportingRoutes    = registerReportingRoutes
	RegisterUploadRoutes       = registerUploadRoutes
)
