// Package ramltools resolves RAML API descriptions into a typed object graph.
//
// A RAML document is loaded into an ordered document tree, then resolved
// into resources, methods, parameters, security schemes, traits, resource
// types and (for RAML 1.0) a nominal data-type system.
//
// # Packages
//
//   - loader: read YAML/JSON RAML text into a document.Document, resolving !include
//   - config: allow-lists for methods, media types, response codes and protocols
//   - raml: the resolver; builds the RootNode and its resource tree
//   - datatype: the RAML 1.0 data-type registry and instance validation
//   - ramlerrors: typed errors for errors.Is / errors.As
//
// # Quick Start
//
//	result, err := raml.ParseWithOptions(
//		raml.WithFilePath("api.raml"),
//		raml.WithValidate(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, res := range result.Root.Resources {
//		fmt.Println(res.Method, res.Path)
//	}
//
// Validate an instance against a declared type:
//
//	person, _ := result.Root.TypeRegistry.Lookup("Person")
//	if err := datatype.Validate(person, map[string]any{"name": "Ada"}, "person"); err != nil {
//		fmt.Println(err)
//	}
package ramltools
