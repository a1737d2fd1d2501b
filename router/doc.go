// Package router assembles request pipelines into a route table. It
// supports:
//
//   - Mounting sub-groups under a path prefix, with a choice of termination
//     policy (terminal, non-terminal, filter)
//   - Attaching pipeline middleware at the root or per group
//   - Registering handlers for patterns, with or without HTTP method
//     prefixes, matched by chi against the mount-relative path
//   - Mounting static file handlers
//   - Defining custom NotFound (404) handlers
//
// Example usage:
//
//	r := router.New()
//
//	// global middleware
//	r.Use(middleware.Logger(logger))
//
//	// mount API group
//	api := r.Mount("/api")
//	api.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
//	    w.Write([]byte("pong"))
//	})
//
//	// serve
//	http.ListenAndServe(":8080", r)
//
// Middleware added to the root group executes for every request. Middleware
// added to a subgroup executes only for requests reaching that group, after
// the mount has stripped its prefix. The order of middleware application is
// the same as the order they are added, i.e. first added runs outermost.
//
// Stages run in registration order. All routes of a group share one chi
// router, which runs at the position of the group's first route. A mount
// registered with MountNonTerminal lets later stages of the enclosing group
// run after it; MountFilter hands back whatever its own stages decided.
package router
