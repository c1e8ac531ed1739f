package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Ortho writes an orthographic projection into out. x and y map linearly from
// [left, right] and [bottom, top] to [-1, 1]. z maps from [near, far] to [1, 0], so a
// larger z lands closer to the viewer and the result is valid clip space for both
// OpenGL ([-1, 1] depth) and WebGPU ([0, 1] depth).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extent
//   - bottom, top: vertical extent
//   - near, far: depth extent (near < far)
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = -1 / (far - near)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = far / (far - near)
}

// ScreenOrtho returns the view-projection used for pixel-space 2D drawing: the origin
// sits at the center of a width x height screen, +Y is up and z covers [-1000, 1000].
//
// Parameters:
//   - width, height: screen size in pixels
//
// Returns:
//   - [16]float32: column-major matrix
func ScreenOrtho(width, height float32) [16]float32 {
	var m [16]float32
	if width <= 0 || height <= 0 {
		Identity(m[:])
		return m
	}
	Ortho(m[:], -width/2, width/2, -height/2, height/2, -1000, 1000)
	return m
}

// ScreenToWorld converts a cursor position in window pixels (origin top left, y down) to the
// centered, y-up coordinates ScreenOrtho projects.
//
// Parameters:
//   - x, y: cursor position in pixels
//   - width, height: window size in pixels
//
// Returns:
//   - [2]float32: the position in sprite coordinates
func ScreenToWorld(x, y, width, height float32) [2]float32 {
	return [2]float32{x - width/2, height/2 - y}
}

// TransformPoint multiplies a column-major 4x4 matrix by the point (x, y, z, 1).
//
// Returns:
//   - [4]float32: the transformed homogeneous point
func TransformPoint(m []float32, x, y, z float32) [4]float32 {
	return [4]float32{
		m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14],
		m[3]*x + m[7]*y + m[11]*z + m[15],
	}
}

// Rotate2D rotates (x, y) counter-clockwise about the origin by angle radians.
func Rotate2D(x, y, angle float32) (float32, float32) {
	if angle == 0 {
		return x, y
	}
	s, c := math32.Sincos(angle)
	return x*c - y*s, x*s + y*c
}

// Normalize3 normalizes a 3-component vector. A zero-length input yields the zero vector.
func Normalize3(v [3]float32) [3]float32 {
	length := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length == 0 {
		return [3]float32{}
	}
	inv := 1 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// CosDeg converts an angle in degrees to the cosine of that angle.
func CosDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180)
}
