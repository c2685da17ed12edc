// Package imagekit runs batch image jobs described by recipes. A recipe
// names an input image, an ordered list of registered operations and an
// output; Pipeline.Run loads, transforms and saves it, logging each step.
//
// The pixel engine itself (buffers, kernels, convolution, compositing,
// codecs) lives in the imageutil subpackage and can be used directly.
package imagekit
