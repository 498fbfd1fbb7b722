package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const imuVersion = 1

// IMUVector is a 3-axis float measurement with an accuracy indicator.
type IMUVector struct {
	X, Y, Z  float32
	Accuracy uint8
}

func decodeIMUVector(buf []byte, off int) IMUVector {
	return IMUVector{
		X:        visionary.ReadF32(buf, off, visionary.LittleEndian),
		Y:        visionary.ReadF32(buf, off+4, visionary.LittleEndian),
		Z:        visionary.ReadF32(buf, off+8, visionary.LittleEndian),
		Accuracy: visionary.ReadU8(buf, off+12),
	}
}

const imuVectorSize = 4 + 4 + 4 + 1

// IMUQuaternion is an orientation quaternion with a float accuracy.
type IMUQuaternion struct {
	X, Y, Z, W float32
	Accuracy   float32
}

func decodeIMUQuaternion(buf []byte, off int) IMUQuaternion {
	return IMUQuaternion{
		X:        visionary.ReadF32(buf, off, visionary.LittleEndian),
		Y:        visionary.ReadF32(buf, off+4, visionary.LittleEndian),
		Z:        visionary.ReadF32(buf, off+8, visionary.LittleEndian),
		W:        visionary.ReadF32(buf, off+12, visionary.LittleEndian),
		Accuracy: visionary.ReadF32(buf, off+16, visionary.LittleEndian),
	}
}

const imuQuaternionSize = 4 + 4 + 4 + 4 + 4

// IMU is the decoded payload of the IMU segment.
type IMU struct {
	Acceleration    IMUVector
	AngularVelocity IMUVector
	Orientation     IMUQuaternion
}

func decodeIMU(version uint16, payload []byte) (IMU, ErrorKind, error) {
	if version != imuVersion {
		return IMU{}, ErrorKindUnsupportedVersion, fmt.Errorf("blob: imu version %d != %d", version, imuVersion)
	}
	const want = imuVectorSize + imuVectorSize + imuQuaternionSize
	if len(payload) != want {
		return IMU{}, ErrorKindLengthMismatch, fmt.Errorf("blob: imu payload length %d != expected %d", len(payload), want)
	}

	return IMU{
		Acceleration:    decodeIMUVector(payload, 0),
		AngularVelocity: decodeIMUVector(payload, imuVectorSize),
		Orientation:     decodeIMUQuaternion(payload, imuVectorSize*2),
	}, ErrorKindNone, nil
}
