// Package resolver resolves Maven style coordinates to the on-disk location of their project
// model descriptor while a model builder computes an effective model and needs to read parent
// or import models.
//
//	Input: ResolveModel(g, a, v) | ResolveParent(parent) | ResolveDependency(dependency)
//		↓
//	Resolver
//		├─ name the fetch unit: taskPrefix + counter
//		├─ FetchService.CreateFetchUnit(name)
//		├─ FetchUnit.SetTransitive(false)
//		├─ FetchUnit.AddDependency("g:a:v@pom")
//		└─ FetchUnit.ResolveToSingleFile()
//		  ↓
//	Listener.OnResolveModel(event)
//		  ↓
//	modelsource.File over the absolute path of the file
//
// Every call creates its own fetch unit, nothing is cached or shared between calls apart from the
// counter used to name the units. Repositories declared by the model builder are ignored, the
// repositories are fixed by the fetch service.
package resolver
