package adminapi

// Init registers every admin api route on the webserver. webserver.Init
// must run first.
func Init() {
	registerAuthRoutes()
	registerClientRoutes()
	registerProfessionalRoutes()
	registerServiceRoutes()
	registerMaterialRoutes()
	registerOrderRoutes()
	registerAccountRoutes()
	registerNotificationRoutes()
	registerUserRoutes()
	registerMaintenanceRoutes()
}
