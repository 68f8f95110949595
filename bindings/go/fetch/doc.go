// Package fetch implements the fetch service the model resolver is built on.
//
// An Engine owns a namespace of named fetch units. A Unit collects dependency
// notations ("<groupId>:<artifactId>:<version>@<packaging>") and resolves them to
// local files through the repositories returned by a RepositoryProvider.
// Units are transitive by default like a build tool configuration; only
// non-transitive units can be resolved, expanding dependencies is left to the
// model builder.
package fetch
