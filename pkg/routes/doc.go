// Package routes holds the route table the dispatcher ends in.
//
// Boot routes (the root document and partial views) are installed once and
// are not namespaced. Routes contributed by other modules are always
// mounted under the API prefix:
//
//	table := routes.NewTable("/api/")
//	_ = table.InstallStatic(routes.NewViewResolver(viewsRoot, logger))
//	err := table.RegisterExternal("get", "users/:id", usersHandler) // GET /api/users/{id}
//
// A second registration for the same method and path fails with
// *RouteConflictError and the first registration keeps serving.
// Handlers read path variables with mux.Vars.
package routes
