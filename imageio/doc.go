// Package imageio decodes source images into palq.Image and encodes
// quantization results.
//
// Decoding accepts PNG, GIF, JPEG, BMP, TIFF, WebP and PQX. Encoding writes
// 8-bit paletted PNG, BMP and TIFF, or a PQX container.
//
//	img, err := imageio.Decode(r)
//	...
//	res, err := palq.Quantize(ctx, img)
//	...
//	err = imageio.Encode(w, res, imageio.PNG)
package imageio
