// Command blogserver serves blog posts over HTTP, as implemented by package
// server, keeping them in a JSON image that is rewritten after every change.
//
// By default it listens on :9999 and keeps the image in blog-posts.json, in
// the current directory. Both, and the storage backend, can be changed in the
// configuration file (see config.go), an rjson document such as
//
//	{
//		address: ":9999"
//		backend: "bolt"
//		bolt_file: "/var/lib/blog/blog.db"
//		mirror: {
//			bucket: "blog-backups"
//			region: "eu-west-2"
//			puts_per_second: 1
//		}
//	}
//
// If the image cannot be read or parsed at startup, the error is logged and
// the server starts with no posts.
package main // import "github.com/nicolagi/blogposts/cmd/blogserver"
