// Package fakeproc is a C vkGetInstanceProcAddr stand-in for loader tests.
// Every name resolves except those starting with Missing, and the last
// lookup's handle and scope are remembered.
package fakeproc

/*
#include <stddef.h>
#include <string.h>

typedef void (*fake_void_fn)(void);

static void *fake_last_handle;
static int fake_last_scope;
static int fake_lookups;

static void fake_entry(void) {}

static int fake_missing(const char *name) {
	return strncmp(name, "vkMissing", 9) == 0;
}

static fake_void_fn fake_device_proc_addr(void *device, const char *name) {
	fake_last_handle = device;
	fake_last_scope = 2;
	fake_lookups++;
	return fake_missing(name) ? NULL : fake_entry;
}

static fake_void_fn fake_instance_proc_addr(void *instance, const char *name) {
	fake_last_handle = instance;
	fake_last_scope = 1;
	fake_lookups++;
	if (fake_missing(name)) {
		return NULL;
	}
	if (strcmp(name, "vkGetDeviceProcAddr") == 0) {
		return (fake_void_fn)fake_device_proc_addr;
	}
	return fake_entry;
}

static void *fake_get_instance_proc_addr(void) { return (void *)fake_instance_proc_addr; }
static void *fake_handle(void) { return fake_last_handle; }
static int fake_scope(void) { return fake_last_scope; }
static int fake_count(void) { return fake_lookups; }

static void fake_reset(void) {
	fake_last_handle = NULL;
	fake_last_scope = 0;
	fake_lookups = 0;
}
*/
import "C"
import "unsafe"

const Missing = "vkMissing"

type Scope int

const (
	None Scope = iota
	Instance
	Device
)

func GetInstanceProcAddr() unsafe.Pointer {
	return C.fake_get_instance_proc_addr()
}

// Last returns the handle and scope of the most recent lookup.
func Last() (unsafe.Pointer, Scope) {
	return C.fake_handle(), Scope(C.fake_scope())
}

// Lookups counts the calls into either proc addr function since Reset.
func Lookups() int {
	return int(C.fake_count())
}

func Reset() {
	C.fake_reset()
}
