// Package blob reassembles and decodes SafeVisionary2 measurement blobs:
// UDP-fragment and TCP-stream reassembly, the blob header and its segment
// offset table, the XML metadata segment, and the seven fixed-layout
// binary segments (depth map, device status, ROI, local I/Os, field
// information, logic signals, IMU), producing a typed Frame per blob.
package blob
