// Package pipeline defines the request pipeline that mounts and middleware
// plug into. A pipeline is an ordered sequence of stages; each stage handles
// a request and returns a Signal telling the enclosing chain whether to run
// the next stage (Continue) or to treat the response as final (Stop).
//
// Stages see a Request, a thin wrapper over *http.Request whose path may be
// rewritten in place while the request travels through the pipeline:
//
//	chain := pipeline.NewChain(
//	    pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
//	        if p, _ := req.Path(); p == "/ping" {
//	            w.Write([]byte("pong"))
//	            return pipeline.Stop
//	        }
//	        return pipeline.Continue
//	    }),
//	    pipeline.Terminal(http.FileServer(http.Dir("./public"))),
//	)
//
//	http.ListenAndServe(":8080", pipeline.Serve(chain, nil))
//
// Chains are Handlers themselves, so pipelines nest to any depth.
package pipeline
