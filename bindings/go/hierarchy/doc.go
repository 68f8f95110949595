// Package hierarchy discovers the model hierarchy of a project: its chain of parent
// models and the bills of materials it imports into its dependency management,
// recursively. Every model is obtained through a resolver.ModelResolver.
package hierarchy
